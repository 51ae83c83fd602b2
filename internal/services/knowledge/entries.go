package knowledge

import "github.com/ternarybob/custos/internal/models"

// builtinEntries is the predefined compliance reference set. Entries cover
// the four categories the assistant is scoped to: AML, KYC, trading, and
// regulatory reporting. Operators can merge additional entries over this set
// via knowledge.entries_file.
func builtinEntries() []models.KnowledgeEntry {
	return []models.KnowledgeEntry{
		{
			ID:       "kb-aml-str",
			Category: "aml",
			Title:    "Suspicious Transaction Report (STR) filing",
			Text: "A Suspicious Transaction Report (STR) must be filed with the financial intelligence unit " +
				"within 7 days of the suspicion being formed. The report must identify the account, the " +
				"transactions in question, and the grounds for suspicion. Filing an STR must not be disclosed " +
				"to the customer (no tipping-off).",
			Keywords: []string{"str", "suspicious", "transaction report", "filing", "fiu"},
		},
		{
			ID:       "kb-aml-retention",
			Category: "aml",
			Title:    "AML record retention",
			Text: "AML records, including customer identification documents, transaction records, and internal " +
				"suspicion assessments, must be retained for a minimum of 5 years after the end of the customer " +
				"relationship or the date of the transaction, whichever is later.",
			Keywords: []string{"aml", "record", "retention", "retain", "records"},
		},
		{
			ID:       "kb-aml-redflags",
			Category: "aml",
			Title:    "Common AML red flags",
			Text: "Common AML red flags include structuring deposits below reporting thresholds, rapid movement " +
				"of funds through newly opened accounts, transactions inconsistent with the customer's profile, " +
				"use of shell entities with no clear business purpose, and reluctance to provide beneficial " +
				"ownership information. Accounts exhibiting these patterns should be escalated for review.",
			Keywords: []string{"red flag", "red flags", "structuring", "flagged", "escalation", "money laundering"},
		},
		{
			ID:       "kb-kyc-docs",
			Category: "kyc",
			Title:    "KYC documentation requirements",
			Text: "Standard KYC onboarding requires proof of identity (government-issued photo ID), proof of " +
				"address (utility bill or bank statement no older than 3 months), and, for legal entities, " +
				"certificate of incorporation and identification of beneficial owners holding 25% or more. " +
				"KYC files must be refreshed on a risk-based cycle: annually for high risk, every 3 years for " +
				"medium risk, and every 5 years for low risk customers.",
			Keywords: []string{"kyc", "document", "documents", "identity", "onboarding", "refresh"},
		},
		{
			ID:       "kb-kyc-edd",
			Category: "kyc",
			Title:    "Enhanced due diligence",
			Text: "Enhanced due diligence (EDD) applies to high-risk customers, including politically exposed " +
				"persons, customers from high-risk jurisdictions, and complex ownership structures. EDD requires " +
				"senior management approval, source-of-wealth and source-of-funds verification, and enhanced " +
				"ongoing monitoring. Simplified due diligence is permitted only for demonstrably low-risk " +
				"products and customers.",
			Keywords: []string{"due diligence", "edd", "enhanced", "pep", "high-risk", "simplified"},
		},
		{
			ID:       "kb-trading-circular",
			Category: "trading",
			Title:    "Circular trading and market manipulation",
			Text: "Circular trading is the execution of offsetting buy and sell orders between colluding parties " +
				"to create a false appearance of trading volume without a change in beneficial ownership. It is " +
				"a form of market manipulation alongside spoofing, layering, and marking the close, and must be " +
				"surveilled and reported when detected.",
			Keywords: []string{"circular", "manipulation", "spoofing", "layering", "wash trade"},
		},
		{
			ID:       "kb-trading-insider",
			Category: "trading",
			Title:    "Insider trading controls",
			Text: "Trading while in possession of material non-public information is prohibited. Firms must " +
				"maintain insider lists, information barriers between advisory and trading functions, and " +
				"pre-clearance procedures for employee personal account dealing. Pre-trade compliance checks " +
				"must block orders that breach restricted or watch lists.",
			Keywords: []string{"insider", "material non-public", "restricted list", "pre-trade", "personal account"},
		},
		{
			ID:       "kb-reporting-timelines",
			Category: "reporting",
			Title:    "Regulatory reporting timelines",
			Text: "Transaction reports are due to the regulator by close of the next business day (T+1). " +
				"Suspicious activity must be reported without delay once suspicion is formed. Large cash " +
				"transactions above the prescribed threshold require same-day reporting. Late filing attracts " +
				"administrative penalties and repeated failures may trigger enforcement action.",
			Keywords: []string{"reporting", "timeline", "timelines", "deadline", "report", "penalties", "late"},
		},
	}
}

// sampleQuestions mirrors the assistant's scoped compliance topics. Served by
// the topics endpoint and the MCP list_topics tool so callers can discover
// what the assistant covers.
var sampleQuestions = map[string][]string{
	"aml": {
		"What are STR reporting requirements?",
		"When should an account be flagged for AML?",
		"What are the key AML red flags?",
		"How long should AML records be retained?",
	},
	"trading": {
		"What is considered circular trading?",
		"What are insider trading regulations?",
		"What constitutes market manipulation?",
		"What are pre-trade compliance checks?",
	},
	"kyc": {
		"What documents are required for KYC?",
		"How often should KYC be updated?",
		"What is enhanced due diligence?",
		"When is simplified due diligence applicable?",
	},
	"reporting": {
		"What are regulatory reporting timelines?",
		"Which transactions require immediate reporting?",
		"What are the penalties for late reporting?",
		"How should suspicious activities be documented?",
	},
}

// SampleQuestions returns the predefined sample questions by category
func SampleQuestions() map[string][]string {
	return sampleQuestions
}
