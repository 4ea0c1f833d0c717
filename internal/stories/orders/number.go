package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderNumber строит человекочитаемый номер: дата плюс случайный суффикс.
// Уникальность гарантирует индекс в БД, коллизия приводит к повторной
// генерации, а не к молчаливому дублю.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return fmt.Sprintf("KV-%s-%s", now.Format("20060102"), suffix)
}
