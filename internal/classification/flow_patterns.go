package classification

// DefaultFlowPatterns returns the patterns used to recognise money movements
// that are not spending: internal transfers and income credits.
func DefaultFlowPatterns() []FlowPattern {
	return []FlowPattern{
		// Transfers between own accounts must never count as expenses.
		{
			Name:     "Account Transfer",
			Type:     FlowTransfer,
			Regex:    `\b(TRANSFER|XFER|TRF|TRANSFER[EÊ]NCIA|TRANSF)\b`,
			Priority: 100,
		},
		{
			Name:     "Credit Card Payment",
			Type:     FlowTransfer,
			Regex:    `\b(CREDIT\s*CARD\s*PAYMENT|CC\s*PAYMENT|PAGAMENTO\s*CART[AÃ]O)\b`,
			Priority: 95,
		},
		{
			Name:     "Savings Transfer",
			Type:     FlowTransfer,
			Regex:    `\b(TO\s*SAVINGS|FROM\s*SAVINGS|POUPAN[CÇ]A)\b`,
			Priority: 90,
		},
		{
			Name:     "Salary",
			Type:     FlowIncome,
			Regex:    `\b(PAYROLL|SALARY|DIRECT\s*DEP|SAL[AÁ]RIO|VENCIMENTO|ORDENADO)\b`,
			Priority: 85,
		},
		{
			Name:     "Refund",
			Type:     FlowIncome,
			Regex:    `\b(REFUND|REEMBOLSO|DEVOLU[CÇ][AÃ]O|CASHBACK)\b`,
			Priority: 80,
		},
		{
			Name:     "Interest",
			Type:     FlowIncome,
			Regex:    `\b(INTEREST|DIVIDEND|JUROS)\b`,
			Priority: 75,
		},
	}
}
