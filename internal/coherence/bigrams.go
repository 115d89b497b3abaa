package coherence

// commonBigrams holds the 50 most frequent English character pairs.
// Natural-language text shows a predictable bigram distribution; random
// character sequences do not. Never mutated.
var commonBigrams = map[string]struct{}{
	"th": {}, "he": {}, "in": {}, "er": {}, "an": {},
	"re": {}, "on": {}, "at": {}, "en": {}, "nd": {},
	"ti": {}, "es": {}, "or": {}, "te": {}, "of": {},
	"ed": {}, "is": {}, "it": {}, "al": {}, "ar": {},
	"st": {}, "to": {}, "nt": {}, "ng": {}, "se": {},
	"ha": {}, "as": {}, "ou": {}, "io": {}, "le": {},
	"ve": {}, "co": {}, "me": {}, "de": {}, "hi": {},
	"ri": {}, "ro": {}, "ic": {}, "ne": {}, "ea": {},
	"ra": {}, "ce": {}, "li": {}, "ch": {}, "ll": {},
	"be": {}, "ma": {}, "si": {}, "om": {}, "ur": {},
}
