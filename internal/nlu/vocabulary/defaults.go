package vocabulary

// Canonical verbs. The classifier and the cleaning rules key off these.
const (
	VerbAdd      = "add"
	VerbRemove   = "remove"
	VerbUpdate   = "set"
	VerbCheckout = "checkout"
	VerbClear    = "clear"
	VerbBill     = "bill"
	VerbOpen     = "open"
	VerbShow     = "show"
	VerbNavigate = "navigate"
	VerbSearch   = "search"
)

var defaultTerms = []Entry{
	// Nouns (product categories).
	{Canonical: "rice", Kind: KindNoun, Variants: []string{"chawal", "chaawal", "chaval", "chawel", "चावल", "bhaat", "arisi", "அரிசி", "biyyam"}},
	{Canonical: "sugar", Kind: KindNoun, Variants: []string{"cheeni", "chini", "shakkar", "sakkar", "चीनी", "शक्कर", "sarkarai"}},
	{Canonical: "salt", Kind: KindNoun, Variants: []string{"namak", "nimak", "नमक", "uppu"}},
	{Canonical: "oil", Kind: KindNoun, Variants: []string{"tel", "tael", "तेल", "ennai", "nune"}},
	{Canonical: "milk", Kind: KindNoun, Variants: []string{"doodh", "dudh", "दूध", "paal", "palu"}},
	{Canonical: "flour", Kind: KindNoun, Variants: []string{"atta", "aata", "aataa", "आटा", "maida"}},
	{Canonical: "dal", Kind: KindNoun, Variants: []string{"daal", "dhal", "दाल", "paruppu", "pappu", "lentils"}},
	{Canonical: "tea", Kind: KindNoun, Variants: []string{"chai", "chaay", "chaai", "चाय"}},
	{Canonical: "coffee", Kind: KindNoun, Variants: []string{"kaapi", "kofi", "कॉफी"}},
	{Canonical: "bread", Kind: KindNoun, Variants: []string{"pav", "paav", "ब्रेड"}},
	{Canonical: "egg", Kind: KindNoun, Variants: []string{"eggs", "anda", "ande", "अंडा", "muttai"}},
	{Canonical: "onion", Kind: KindNoun, Variants: []string{"onions", "pyaaz", "pyaj", "kanda", "प्याज", "vengayam"}},
	{Canonical: "potato", Kind: KindNoun, Variants: []string{"potatoes", "aloo", "alu", "batata", "आलू"}},
	{Canonical: "tomato", Kind: KindNoun, Variants: []string{"tomatoes", "tamatar", "टमाटर", "thakkali"}},
	{Canonical: "butter", Kind: KindNoun, Variants: []string{"makhan", "makkhan", "मक्खन"}},
	{Canonical: "ghee", Kind: KindNoun, Variants: []string{"ghi", "घी", "nei"}},
	{Canonical: "soap", Kind: KindNoun, Variants: []string{"sabun", "saabun", "साबुन"}},
	{Canonical: "biscuit", Kind: KindNoun, Variants: []string{"biscuits", "biskut", "बिस्किट"}},
	{Canonical: "water", Kind: KindNoun, Variants: []string{"paani", "pani", "पानी"}},
	{Canonical: "curd", Kind: KindNoun, Variants: []string{"dahi", "दही", "thayir"}},

	// Verbs (cart and navigation actions).
	{Canonical: VerbAdd, Kind: KindVerb, Variants: []string{"daalo", "dalo", "jodo", "jodiye", "डालो", "जोड़ो", "put", "insert", "chahiye", "चाहिए", "venum", "kavali"}},
	{Canonical: VerbRemove, Kind: KindVerb, Variants: []string{"delete", "hatao", "hataao", "hatado", "nikalo", "nikaalo", "हटाओ", "निकालो", "cancel"}},
	{Canonical: VerbUpdate, Kind: KindVerb, Variants: []string{"change", "update", "modify", "badlo", "बदलो"}},
	{Canonical: VerbCheckout, Kind: KindVerb, Variants: []string{"complete", "finish", "payment", "checkout"}},
	{Canonical: VerbClear, Kind: KindVerb, Variants: []string{"empty", "reset", "khali", "खाली"}},
	{Canonical: VerbBill, Kind: KindVerb, Variants: []string{"invoice", "receipt", "print", "download", "preview", "बिल", "parchi", "raseed", "रसीद"}},
	{Canonical: VerbOpen, Kind: KindVerb, Variants: []string{"kholo", "खोलो"}},
	{Canonical: VerbShow, Kind: KindVerb, Variants: []string{"dikhao", "dikhaao", "दिखाओ"}},
	{Canonical: VerbNavigate, Kind: KindVerb, Variants: []string{"jao", "chalo", "जाओ", "चलो"}},
	{Canonical: VerbSearch, Kind: KindVerb, Variants: []string{"find", "dhundo", "dhoondo", "khojo", "खोजो", "ढूंढो"}},
}

// "do" and "दो" are left out: in Hindi they double as the imperative
// "give", which would turn "hata do" into a quantity.
var defaultNumerals = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
	"thirty": 30, "forty": 40, "fifty": 50, "hundred": 100,

	"ek": 1, "teen": 3, "char": 4, "chaar": 4, "paanch": 5, "panch": 5,
	"chhe": 6, "chhah": 6, "saat": 7, "aath": 8, "nau": 9, "das": 10,
	"gyarah": 11, "barah": 12, "terah": 13, "chaudah": 14, "pandrah": 15,
	"solah": 16, "satrah": 17, "atharah": 18, "unnis": 19, "bees": 20,
	"pachas": 50, "sau": 100,

	"एक": 1, "तीन": 3, "चार": 4, "पांच": 5, "पाँच": 5, "छह": 6, "छः": 6,
	"सात": 7, "आठ": 8, "नौ": 9, "दस": 10, "बीस": 20,
	"१": 1, "२": 2, "३": 3, "४": 4, "५": 5, "६": 6, "७": 7, "८": 8, "९": 9,

	"onnu": 1, "rendu": 2, "moonu": 3, "naalu": 4, "anju": 5,
	"okati": 1, "moodu": 3, "naalugu": 4, "aidu": 5,
}

var defaultUnits = []string{
	"kg", "kgs", "kilo", "kilos", "kilogram", "kilograms",
	"g", "gm", "gms", "gram", "grams",
	"ml", "l", "lt", "ltr", "litre", "litres", "liter", "liters",
	"piece", "pieces", "pc", "pcs",
	"dozen", "dozens", "darjan",
	"pack", "packs", "packet", "packets",
	"box", "boxes", "bottle", "bottles", "bag", "bags",
	"किलो", "ग्राम", "लीटर", "दर्जन", "पैकेट", "पीस",
}

var defaultFillers = []string{
	"to", "of", "the", "a", "an", "in", "into", "from", "for", "me", "my",
	"please", "and", "with", "some", "it", "this", "that",
	"cart", "quantity", "item", "items",
	"pe", "par", "mein", "ko", "ka", "ki", "ke", "se", "kar", "karo", "kijiye", "ji", "bhai",
	"में", "को", "का", "की", "के", "से", "करो",
}

var defaultReserved = []string{
	"billing", "dashboard", "inventory", "profile", "analytics",
	"home", "page", "stock", "report", "reports", "account", "products", "sales",
	"take", "go",
	"price", "rate", "cost", "total", "amount", "order",
	"clean", "cleaner", "cleaning",
}

// DefaultSpec returns a copy of the built-in vocabulary spec.
func DefaultSpec() Spec {
	terms := make([]Entry, len(defaultTerms))
	for i, e := range defaultTerms {
		terms[i] = Entry{Canonical: e.Canonical, Kind: e.Kind, Variants: append([]string(nil), e.Variants...)}
	}
	numerals := make(map[string]int, len(defaultNumerals))
	for k, n := range defaultNumerals {
		numerals[k] = n
	}
	return Spec{
		Terms:    terms,
		Numerals: numerals,
		Units:    append([]string(nil), defaultUnits...),
		Fillers:  append([]string(nil), defaultFillers...),
		Reserved: append([]string(nil), defaultReserved...),
	}
}

var defaultVocabulary = MustNew(DefaultSpec())

// Default returns the built-in vocabulary.
func Default() *Vocabulary {
	return defaultVocabulary
}
