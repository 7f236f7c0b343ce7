// internal/practice/words.go
package practice

// callPrefixes is a sampling of US amateur callsign prefixes.
var callPrefixes = []string{
	"K", "N", "W", "AA", "AB", "AC", "AD", "AE", "AF",
	"AG", "AH", "AI", "AJ", "AK", "AL", "KA", "KB", "KC",
	"KD", "KE", "KF", "KG", "KH", "KI", "KL", "KM", "KN",
	"NA", "NB", "NC", "ND", "NE", "NF", "NG", "NH", "NI",
	"NJ", "NK", "NL", "NM", "NN", "WA", "WB", "WC", "WD",
	"WE", "WF", "WG", "WH", "WI", "WJ", "WK", "WL", "WM",
	"WN",
}

// topWords are the most used words in CW contacts, most frequent first.
// Duplicates are kept; they weight the draw.
var topWords = []string{
	"I", "AND", "THE", "YOU", "THAT", "A", "TO", "KNOW",
	"OF", "IT", "YES", "IN", "THEY", "DO", "SO", "BUT",
	"IS", "LIKE", "HAVE", "WAS", "WE", "ITS", "JUST",
	"ON", "OR", "NOT", "THINK", "FOR", "WELL", "WHAT",
	"ABOUT", "ALL", "THATS", "OH", "REALLY", "ONE",
	"ARE", "RIGHT", "THEM", "AT", "HERE", "THERE", "MY",
	"MEAN", "DONT", "NO", "WITH", "IF", "WHEN", "CAN", "U",
	"BE", "AS", "OUT", "KIND", "BECAUSE", "PEOPLE",
	"GO", "GOT", "THIS", "SOME", "IM", "WOULD", "THINGS",
	"NOW", "LOT", "HAD", "HOW", "GOOD", "GET", "SEE",
	"FROM", "HE", "ME", "DONT", "THEIR", "MORE",
	"TOO", "OK", "VERY", "UP", "BEEN", "GUESS", "TIME",
	"GOING", "INTO", "THOSE", "HERE", "DID", "WORK",
	"OTHER", "AND", "IVE", "THINGS", "EVEN", "OUR",
	"ANY", "IM", "QRL", "QRM", "QRN", "QRQ", "QRS",
	"QRZ", "QTH", "QSB", "QSY", "R", "TU", "RTU", "TNX",
	"NAME", "RST", "CQ", "AGN", "ANT", "DX", "ES", "FB",
	"GM", "GA", "GE", "HI", "HR", "HW", "NR", "OM", "PSE",
	"PWR", "WX", "73", "5NN", "599", "U", "BTU", "TST",
}
