package cli

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/mandaditos/internal/client/models"
)

func parseKind(s string) (models.Kind, error) {
	switch strings.ToLower(s) {
	case "", "e", "errand", "errands", "mandado", "mandados":
		return models.KindErrand, nil
	case "x", "expense", "expenses", "gasto", "gastos":
		return models.KindExpense, nil
	case "o", "opening", "openings", "day-opening", "day-openings", "apertura":
		return models.KindDayOpening, nil
	}
	return "", fmt.Errorf("unknown kind %q (errands, expenses, openings)", s)
}
