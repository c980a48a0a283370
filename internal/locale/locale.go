// Package locale renders classifier evidence as human-readable text. The
// classifier itself carries no prose; everything a person reads is produced
// here.
package locale

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"primelab/internal/primality"
)

// Language is a supported output language.
type Language string

const (
	English Language = "en"
	Chinese Language = "zh"
)

// Default is used when nothing better can be negotiated.
const Default = English

var matcher = language.NewMatcher([]language.Tag{
	language.English, // first entry is the fallback
	language.Chinese,
})

// Parse accepts a BCP 47 tag such as "en", "zh", "zh-CN" or "en-GB".
func Parse(s string) (Language, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	switch base.String() {
	case "en":
		return English, true
	case "zh":
		return Chinese, true
	}
	return "", false
}

// Negotiate picks the output language. An explicit, supported choice wins;
// otherwise the Accept-Language header is matched; otherwise Default.
func Negotiate(acceptLanguage, explicit string) Language {
	if lang, ok := Parse(explicit); ok {
		return lang
	}
	if acceptLanguage == "" {
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	if idx == 1 {
		return Chinese
	}
	return English
}

type texts struct {
	belowMinimum  string
	smallPrime    func(n string) string
	divisible     func(n string, p int64) string
	even          string
	fermatFail    func(a int64, r string) string
	probablePrime func(bases string) string
	noBases       string

	resultPrime     string
	resultComposite string
	inputError      string

	errEmpty    string
	errFormat   string
	errTooLarge string
	errTooLong  func(max int) string
}

var catalog = map[Language]texts{
	English: {
		belowMinimum: "n < 2, so it is not prime.",
		smallPrime:   func(n string) string { return n + " is a small prime." },
		divisible: func(n string, p int64) string {
			return fmt.Sprintf("%s is divisible by %d, so it is composite.", n, p)
		},
		even: "Even and greater than 2, so it is composite.",
		fermatFail: func(a int64, r string) string {
			return fmt.Sprintf("Fermat test fails at base a=%d: a^(n-1) mod n = %s ≠ 1.", a, r)
		},
		probablePrime: func(bases string) string {
			return fmt.Sprintf("Passed Fermat tests (bases %s). So n is probably prime, but not guaranteed.", bases)
		},
		noBases: "none applicable",

		resultPrime:     "Probably prime",
		resultComposite: "Composite",
		inputError:      "Input error",

		errEmpty:    "Please enter an integer.",
		errFormat:   "Integers only (no decimals or symbols).",
		errTooLarge: "This number is too large to parse.",
		errTooLong: func(max int) string {
			return fmt.Sprintf("Input is longer than %d characters.", max)
		},
	},
	Chinese: {
		belowMinimum: "n < 2，不是素数。",
		smallPrime:   func(n string) string { return n + " 是小素数。" },
		divisible: func(n string, p int64) string {
			return fmt.Sprintf("%s 能被 %d 整除，是合数。", n, p)
		},
		even: "偶数且大于 2，一定是合数。",
		fermatFail: func(a int64, r string) string {
			return fmt.Sprintf("费马检验失败：底数 a=%d 时，a^(n-1) mod n = %s ≠ 1。", a, r)
		},
		probablePrime: func(bases string) string {
			return fmt.Sprintf("通过费马检验（底数 %s），所以 n 很可能是素数，但并非数学上绝对保证。", bases)
		},
		noBases: "无",

		resultPrime:     "可能是素数",
		resultComposite: "不是素数",
		inputError:      "输入错误",

		errEmpty:    "请输入一个整数。",
		errFormat:   "只接受整数（不包含小数点或其他符号）。",
		errTooLarge: "这个数字太大，无法解析。",
		errTooLong: func(max int) string {
			return fmt.Sprintf("输入超过 %d 个字符。", max)
		},
	},
}

func lookup(lang Language) texts {
	if t, ok := catalog[lang]; ok {
		return t
	}
	return catalog[Default]
}

// Explain renders the evidence for candidate n as one sentence.
func Explain(n primality.Candidate, ev primality.Evidence, lang Language) string {
	t := lookup(lang)
	switch ev.Reason {
	case primality.ReasonBelowMinimum:
		return t.belowMinimum
	case primality.ReasonSmallPrime:
		return t.smallPrime(n.String())
	case primality.ReasonDivisible:
		return t.divisible(n.String(), ev.Divisor)
	case primality.ReasonEven:
		return t.even
	case primality.ReasonFermatWitness:
		residue := "?"
		if ev.Residue != nil {
			residue = ev.Residue.String()
		}
		return t.fermatFail(ev.Witness, residue)
	case primality.ReasonPassedWitnesses:
		bases := t.noBases
		if len(ev.Tested) > 0 {
			bases = joinInts(ev.Tested)
		}
		return t.probablePrime(bases)
	}
	return string(ev.Reason)
}

// Headline is the short verdict label.
func Headline(v primality.Verdict, lang Language) string {
	t := lookup(lang)
	if v.IsPrimeLikely() {
		return t.resultPrime
	}
	return t.resultComposite
}

// InputErrorTitle is the headline shown for rejected input.
func InputErrorTitle(lang Language) string {
	return lookup(lang).inputError
}

// FormatParseError explains why input was rejected.
func FormatParseError(kind primality.ErrorKind, lang Language) string {
	t := lookup(lang)
	switch kind {
	case primality.ErrorKindEmpty:
		return t.errEmpty
	case primality.ErrorKindTooLarge:
		return t.errTooLarge
	default:
		return t.errFormat
	}
}

// FormatTooLong explains that input exceeded the accepted length.
func FormatTooLong(max int, lang Language) string {
	return lookup(lang).errTooLong(max)
}

func joinInts(xs []int64) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.FormatInt(x, 10)
	}
	return strings.Join(parts, ", ")
}
