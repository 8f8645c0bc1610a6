// Package ofx imports OFX/QFX bank and credit card statements.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/Veraticus/finsight/internal/classification"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/service"
)

// DateLayout is the layout of Transaction.Date for imported records.
const DateLayout = "2006-01-02"

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags at end of line with no closing bracket.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser implements OFX/QFX file parsing.
type Parser struct {
	flows *classification.FlowDetector
}

// NewParser creates a new OFX parser. A nil detector uses the default flow
// patterns.
func NewParser(flows *classification.FlowDetector) *Parser {
	if flows == nil {
		flows = classification.NewDefaultFlowDetector()
	}
	return &Parser{flows: flows}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseFile parses an OFX/QFX file. Debits become expenses, credits become
// income, and transfers between own accounts are counted and skipped.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) (service.Batch, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return service.Batch{}, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return service.Batch{}, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var batch service.Batch
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if err := ctx.Err(); err != nil {
			return service.Batch{}, err
		}
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			if stmt.BankTranList != nil {
				batch.Add(p.convertList(stmt.BankTranList.Transactions, string(stmt.BankAcctFrom.AcctID)))
			}
		}
	}

	for _, msg := range resp.CreditCard {
		if err := ctx.Err(); err != nil {
			return service.Batch{}, err
		}
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			if stmt.BankTranList != nil {
				batch.Add(p.convertList(stmt.BankTranList.Transactions, string(stmt.CCAcctFrom.AcctID)))
			}
		}
	}

	slog.Info("Parsed OFX file",
		"expenses", len(batch.Expenses),
		"income", len(batch.Income),
		"transfers", batch.Transfers,
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return batch, nil
}

func (p *Parser) convertList(list []ofxgo.Transaction, accountID string) service.Batch {
	var batch service.Batch
	for _, ofxTx := range list {
		p.convertTransaction(&batch, ofxTx, accountID)
	}
	return batch
}

// convertTransaction routes one OFX transaction into the batch.
func (p *Parser) convertTransaction(batch *service.Batch, ofxTx ofxgo.Transaction, accountID string) {
	description := p.extractMerchantName(ofxTx)

	if p.isTransfer(description, string(ofxTx.Name), string(ofxTx.Memo)) {
		batch.Transfers++
		return
	}

	// OFX uses negative amounts for debits.
	amount, _ := ofxTx.TrnAmt.Float64()
	if amount == 0 {
		return
	}

	posted := ofxTx.DtPosted.Time
	id := ""
	if ofxTx.FiTID != "" {
		id = accountID + ":" + string(ofxTx.FiTID)
	}
	source := "ofx:" + accountID

	if amount > 0 {
		batch.Income = append(batch.Income, model.IncomeRecord{
			ID:     id,
			Source: description,
			Amount: amount,
			Date:   posted.Format(DateLayout),
			Month:  model.MonthFromTime(posted),
			Year:   posted.Year(),
		})
		return
	}

	batch.Expenses = append(batch.Expenses, model.Transaction{
		ID:          id,
		Description: description,
		Amount:      -amount,
		Date:        posted.Format(DateLayout),
		Month:       model.MonthFromTime(posted),
		Year:        posted.Year(),
		Source:      source,
	})
}

func (p *Parser) isTransfer(texts ...string) bool {
	for _, text := range texts {
		if text != "" && p.flows.IsTransfer(text) {
			return true
		}
	}
	return false
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	// PAYEE carries the cleanest merchant name when present.
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)

	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}

	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"COMPRA ",
		"PAG. ",
		"PAGAMENTO ",
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " or "DD/MM " dates.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"COMPRA",
		"PAGAMENTO",
		"POS TRANSACTION",
	}

	upperName := strings.ToUpper(strings.TrimSpace(name))
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}
