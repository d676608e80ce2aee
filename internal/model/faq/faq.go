package faq

import "strings"

// Entry pairs a canned answer with the question text it answers.
type Entry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Normalize reduces free text to the canonical lookup key: lower-cased,
// trimmed, with internal whitespace runs collapsed to single spaces.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Seed provides the default question bank used when no external FAQ file
// is configured.
func Seed() []Entry {
	return []Entry{
		{
			Question: "how to deposit",
			Answer:   "You can deposit via bank transfer, card payment, or supported e-wallets from the client portal under Funds > Deposit. Deposits reflect within one business day.",
		},
		{
			Question: "how to withdraw",
			Answer:   "Withdrawals are requested from the client portal under Funds > Withdraw and are paid back to the original funding method. Processing takes 1-3 business days.",
		},
		{
			Question: "what is the minimum deposit",
			Answer:   "The minimum deposit is $5 for a standard account.",
		},
		{
			Question: "what leverage do you offer",
			Answer:   "Leverage of up to 1:500 is available depending on account type and instrument.",
		},
		{
			Question: "what are your spreads",
			Answer:   "Spreads start from 0.0 pips on raw accounts and from 1.2 pips on standard accounts.",
		},
		{
			Question: "how do i open an account",
			Answer:   "Register on the website, upload proof of identity and residence, and your account is typically verified within 24 hours.",
		},
		{
			Question: "are you regulated",
			Answer:   "Yes, the broker is authorised and regulated by the FSCA.",
		},
		{
			Question: "what platforms can i trade on",
			Answer:   "MetaTrader 4 and MetaTrader 5 are supported on desktop, web, and mobile.",
		},
	}
}
