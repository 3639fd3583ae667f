package intent

// BookingKeywords trigger auto-booking. Matching is a case-insensitive
// substring test; the first hit wins.
var BookingKeywords = []string{
	"book",
	"schedule",
	"appointment",
	"reserve",
	"book me",
	"i want to book",
	"can you book",
	"please book",
	"book an appointment",
	"set up appointment",
	"mag-book",
	"gusto ko mag-book",
	"pwedeng mag-book",
}

// Topic maps a token found in office names to the words that point at it.
type Topic struct {
	Token    string
	Keywords []string
}

// OfficeTopics is scanned in declaration order. The first topic with a
// matching keyword and an office whose name contains Token wins, so the
// order here is the tie-break between overlapping keywords.
var OfficeTopics = []Topic{
	{Token: "registrar", Keywords: []string{"registrar", "transcript", "diploma", "certificate", "records"}},
	{Token: "cashier", Keywords: []string{"cashier", "payment", "tuition", "pay", "financial"}},
	{Token: "guidance", Keywords: []string{"guidance", "counseling", "counselor"}},
	{Token: "library", Keywords: []string{"library", "book", "borrow"}},
	{Token: "clinic", Keywords: []string{"clinic", "health", "medical", "doctor"}},
}

// ConcernStopWords are removed as whole words before a concern is kept.
var ConcernStopWords = []string{"book", "schedule", "appointment", "reserve", "for", "with", "at", "on"}

// MinConcernLength is the shortest remainder kept as a concern; anything
// shorter is most likely just an office name.
const MinConcernLength = 10

// MaxRelativeDays bounds "N days from now". Larger N is treated as no date.
const MaxRelativeDays = 366
