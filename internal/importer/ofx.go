package importer

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fintrack/internal/ledger"
)

var (
	severityRe = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	bareTagRe  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// cleanOFX repairs formatting that some banks emit and ofxgo rejects.
func cleanOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRe.ReplaceAllStringFunc(content, strings.ToUpper)
	return bareTagRe.ReplaceAllString(content, "$1>")
}

// ParseOFX reads bank and credit card statements from an OFX/QFX file.
// OFX reports debits as negative amounts; they are negated so that spending
// becomes a positive expense and deposits become negative (income).
func ParseOFX(r io.Reader, name string) ([]Record, error) {
	if name == "" {
		name = "ofx"
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading ofx: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(cleanOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("parsing ofx: %w", err)
	}

	var records []Record
	add := func(list *ofxgo.TransactionList) {
		if list == nil {
			return
		}
		for _, tx := range list.Transactions {
			records = append(records, convertOFX(tx, fmt.Sprintf("%s#%s", name, tx.FiTID)))
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			add(stmt.BankTranList)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			add(stmt.BankTranList)
		}
	}

	slog.Debug("parsed ofx", "component", "importer", "file", name, "records", len(records))
	return records, nil
}

func convertOFX(tx ofxgo.Transaction, source string) Record {
	amount := decimal.NewFromBigRat(&tx.TrnAmt.Rat, 2).Neg().InexactFloat64()

	desc := strings.TrimSpace(string(tx.Name))
	if tx.Payee != nil && tx.Payee.Name != "" {
		desc = strings.TrimSpace(string(tx.Payee.Name))
	}
	if desc == "" {
		desc = strings.TrimSpace(string(tx.Memo))
	}

	var category string
	switch tx.TrnType {
	case ofxgo.TrnTypeInt, ofxgo.TrnTypeDiv:
		category = "Income"
	case ofxgo.TrnTypeFee, ofxgo.TrnTypeSrvChg:
		category = "Bank Fees"
	case ofxgo.TrnTypeATM:
		category = "Cash"
	}

	return Record{
		Date:        tx.DtPosted.Format(ledger.DateLayout),
		Amount:      amount,
		Category:    category,
		Description: desc,
		Source:      source,
	}
}
