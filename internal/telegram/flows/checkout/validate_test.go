package checkout

import "testing"

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{
			name:  "ukrainian with plus",
			input: "+380501234567",
			want:  "+380501234567",
			ok:    true,
		},
		{
			name:  "digits only",
			input: "0501234567",
			want:  "0501234567",
			ok:    true,
		},
		{
			name:  "with spaces and parens",
			input: "+38 (050) 123-45-67",
			want:  "+380501234567",
			ok:    true,
		},
		{
			name:  "too short",
			input: "12345",
			ok:    false,
		},
		{
			name:  "letters rejected",
			input: "phone 0501234567",
			ok:    false,
		},
		{
			name:  "plus in the middle rejected",
			input: "050+1234567",
			ok:    false,
		},
		{
			name:  "empty",
			input: "   ",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ValidatePhone(tt.input)
			if ok != tt.ok {
				t.Fatalf("ValidatePhone(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ValidatePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	if _, ok := ValidateName("  "); ok {
		t.Error("blank name accepted")
	}
	if name, ok := ValidateName(" Олена "); !ok || name != "Олена" {
		t.Errorf("ValidateName = %q, %v", name, ok)
	}
}

func TestValidateAddress(t *testing.T) {
	if _, ok := ValidateAddress("Kyiv"); ok {
		t.Error("short address accepted")
	}
	if addr, ok := ValidateAddress("м. Київ, вул. Хрещатик 1"); !ok || addr == "" {
		t.Errorf("ValidateAddress = %q, %v", addr, ok)
	}
}
