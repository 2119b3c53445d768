package analysis

import (
	"iter"
	"slices"
	"strings"
	"unicode"

	"github.com/spacesedan/reviewlens/internal/models"
)

type WordFrequency struct {
	Word   string  `json:"word"`
	Count  int     `json:"count"`
	Weight float64 `json:"weight"`
}

// stopwords is the usual English word-cloud stoplist.
var stopwords = toSet(strings.Fields(`
a about above after again against all also am an and any are aren't as at be because been before
being below between both but by can can't cannot com could couldn't did didn't do does doesn't doing
don't down during each else ever few for from further get had hadn't has hasn't have haven't having
he he'd he'll he's hence her here here's hers herself him himself his how how's however http i i'd
i'll i'm i've if in into is isn't it it's its itself just k let's like me more most mustn't my myself
no nor not of off on once only or other otherwise ought our ours ourselves out over own r same shall
shan't she she'd she'll she's should shouldn't since so some such than that that's the their theirs
them themselves then there there's therefore these they they'd they'll they're they've this those
through to too under until up very was wasn't we we'd we'll we're we've were weren't what what's when
when's where where's which while who who's whom why why's with won't would wouldn't www you you'd
you'll you're you've your yours yourself yourselves
`))

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Tokenize lowercases text and splits it into word tokens. Apostrophes inside
// words are kept, a trailing possessive 's is dropped, and stopwords,
// single-character and purely numeric tokens are filtered out.
func Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		word := strings.Trim(current.String(), "'")
		word = strings.TrimSuffix(word, "'s")
		current.Reset()

		if len([]rune(word)) <= 1 || isNumericOnly(word) {
			return
		}
		if _, stop := stopwords[word]; stop {
			return
		}
		tokens = append(tokens, word)
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_':
			current.WriteRune(unicode.ToLower(r))
		case (r == '\'' || r == '’') && current.Len() > 0:
			current.WriteRune('\'')
		default:
			flush()
		}
	}
	flush()

	return tokens
}

func isNumericOnly(word string) bool {
	for _, r := range word {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// WordFrequencies counts tokens across the cleaned text of records, highest
// count first with ties in alphabetical order, keeping at most max words
// (max <= 0 keeps all). Weight is count relative to the most frequent word.
func WordFrequencies(records iter.Seq2[int, models.ReviewRecord], max int) []WordFrequency {
	counts := make(map[string]int)
	for _, r := range records {
		for _, token := range Tokenize(r.CleanedText) {
			counts[token]++
		}
	}

	freqs := make([]WordFrequency, 0, len(counts))
	for word, n := range counts {
		freqs = append(freqs, WordFrequency{Word: word, Count: n})
	}
	slices.SortFunc(freqs, func(a, b WordFrequency) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Word, b.Word)
	})

	if max > 0 && len(freqs) > max {
		freqs = freqs[:max]
	}
	if len(freqs) > 0 {
		top := float64(freqs[0].Count)
		for i := range freqs {
			freqs[i].Weight = float64(freqs[i].Count) / top
		}
	}
	return freqs
}
