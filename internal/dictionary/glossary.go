package dictionary

import "legaldoc/internal/models"

const builtinPartOfSpeech = "legal term"

var builtinGlossary = map[string]string{
	"indemnification":    "A contractual obligation where one party agrees to compensate another for harm, loss, or damage.",
	"force majeure":      "Unforeseeable circumstances that prevent someone from fulfilling a contract.",
	"arbitration":        "Resolution of a dispute by an impartial third party instead of going to court.",
	"jurisdiction":       "The official power to make legal decisions and judgments.",
	"breach":             "Violation or infringement of a law, obligation, or agreement.",
	"whereas":            "A legal term used in contracts to introduce recitals or background statements.",
	"hereby":             "By this means; as a result of this document or statement.",
	"notwithstanding":    "In spite of; without being affected by.",
	"pursuant":           "In accordance with or following.",
	"covenant":           "A formal agreement or promise in a contract.",
	"governing law":      "The body of law chosen by the parties to interpret and enforce the contract.",
	"severability":       "A provision keeping the rest of a contract in force if one part is held unenforceable.",
	"liquidated damages": "A sum fixed in the contract that a party must pay if it breaches a specified obligation.",
}

func builtinLookup(term string) (models.TermLookupResult, bool) {
	def, ok := builtinGlossary[term]
	if !ok {
		return models.TermLookupResult{}, false
	}
	return models.TermLookupResult{
		Term:         term,
		Definition:   def,
		PartOfSpeech: builtinPartOfSpeech,
		Source:       models.SourceBuiltin,
	}, true
}
