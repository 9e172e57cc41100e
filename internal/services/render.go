// Template rendering for the secondary relay.
package services

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ldmoura/go-payments-backend/internal/domain"
)

// defaultCustomerName substitutes {nome} when the ledger row has no
// customer name.
const defaultCustomerName = "Cliente"

// ptBR renders localized numbers (comma decimal separator) for {valor}.
var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// renderTemplate substitutes the placeholder tokens {nome},
// {primeiro_nome}, {valor} and {tipo} in text with values from the
// transaction. Unknown tokens are left untouched.
func renderTemplate(text string, tx *domain.Transaction) string {
	name := defaultCustomerName
	if tx.CustomerName != nil && strings.TrimSpace(*tx.CustomerName) != "" {
		name = strings.TrimSpace(*tx.CustomerName)
	}
	return strings.NewReplacer(
		"{nome}", name,
		"{primeiro_nome}", firstName(name),
		"{valor}", formatCurrency(tx.Amount),
		"{tipo}", domain.TypeLabel(tx.Type),
	).Replace(text)
}

// firstName returns the first whitespace-delimited token of a full name.
func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return name
	}
	return fields[0]
}

// formatCurrency renders an amount as Brazilian currency, e.g. "R$ 19,90".
func formatCurrency(amount decimal.Decimal) string {
	f, _ := amount.Float64()
	return ptBR.Sprintf("R$ %.2f", f)
}
