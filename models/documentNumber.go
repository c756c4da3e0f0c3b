package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ysrn87/pos_backend/utils"
	"gorm.io/gorm"
)

// Document numbers follow PREFIX-YYMMDD-NNNN with a 4-digit counter that
// resets each calendar day per prefix.

func FormatDocumentNumber(prefix string, day time.Time, counter int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, day.Format("060102"), counter)
}

// ParseDocumentCounter extracts the numeric counter from a document number.
// A malformed suffix is an error; numbering must not silently restart at 1
// on top of garbage data.
func ParseDocumentCounter(number string) (int, error) {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0, fmt.Errorf("malformed document number %q", number)
	}
	counter, err := strconv.Atoi(number[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("non-numeric counter in document number %q", number)
	}
	return counter, nil
}

// nextDocumentNumber allocates the next number for the given table/column
// inside the caller's transaction: highest counter among today's rows + 1,
// or 1 when today has none. Callers serialize allocation per document type
// with utils.DocumentLock; the unique index on the number column rejects
// duplicates if two allocations still race.
func nextDocumentNumber(tx *gorm.DB, tableName string, columnName string, prefix string, now time.Time) (string, error) {

	dayStart, dayEnd := utils.DayRange(now)

	// Length-first ordering keeps the max correct once the counter overflows
	// four digits; plain string DESC would rank ...-9999 above ...-10000.
	var latest []string
	err := tx.Table(tableName).
		Where(columnName+" LIKE ?", prefix+"-"+now.Format("060102")+"-%").
		Where("created_at >= ? AND created_at < ?", dayStart, dayEnd).
		Order("LENGTH(" + columnName + ") DESC, " + columnName + " DESC").
		Limit(1).
		Pluck(columnName, &latest).Error
	if err != nil {
		return "", err
	}

	counter := 1
	if len(latest) > 0 {
		last, err := ParseDocumentCounter(latest[0])
		if err != nil {
			return "", err
		}
		counter = last + 1
	}

	return FormatDocumentNumber(prefix, now, counter), nil
}
