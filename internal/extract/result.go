package extract

// Record is the structured transaction the model extracts from free text.
// Records are immutable once produced; a record that reaches the sink or
// the notifier is always a confirmed transaction.
type Record struct {
	Result    string `json:"result"`
	Datetime  string `json:"datetime"`
	Message   string `json:"message"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	BankName  string `json:"bank_name"`
	PlainData string `json:"plain_data"`
}

// Outcome tags the extractor verdict for one payload.
type Outcome int

const (
	// OutcomeTransaction marks a confirmed financial transaction.
	OutcomeTransaction Outcome = iota
	// OutcomeNotTransaction marks input the model classified as not financial.
	OutcomeNotTransaction
	// OutcomeParseError marks an empty or non-JSON model reply.
	OutcomeParseError
)

// Result is the tagged extractor verdict. Record is set only for
// OutcomeTransaction; Raw keeps the unparsed reply for OutcomeParseError.
type Result struct {
	Outcome Outcome
	Record  *Record
	Raw     string
}

// Found reports whether downstream storage and notification should run.
func (r Result) Found() bool {
	return r.Outcome == OutcomeTransaction
}
