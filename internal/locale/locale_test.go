package locale

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"primelab/internal/primality"
)

func classify(t *testing.T, n string) (primality.Candidate, primality.Verdict) {
	t.Helper()
	c, err := primality.Parse(n)
	require.NoError(t, err)
	return c, primality.MustNewClassifier().Classify(c)
}

func TestExplain_English(t *testing.T) {
	tests := []struct {
		n    string
		want string
	}{
		{"1", "n < 2, so it is not prime."},
		{"13", "13 is a small prime."},
		{"561", "561 is divisible by 3, so it is composite."},
		{"97", "Passed Fermat tests (bases 2, 3, 5, 7, 11, 13, 17). So n is probably prime, but not guaranteed."},
	}
	for _, tt := range tests {
		t.Run(tt.n, func(t *testing.T) {
			c, v := classify(t, tt.n)
			assert.Equal(t, tt.want, Explain(c, v.Evidence, English))
		})
	}
}

func TestExplain_FermatWitness(t *testing.T) {
	c, v := classify(t, "2701")
	residue := new(big.Int).Exp(big.NewInt(5), big.NewInt(2700), big.NewInt(2701)).String()

	assert.Equal(t, "Fermat test fails at base a=5: a^(n-1) mod n = "+residue+" ≠ 1.", Explain(c, v.Evidence, English))
	assert.Equal(t, "费马检验失败：底数 a=5 时，a^(n-1) mod n = "+residue+" ≠ 1。", Explain(c, v.Evidence, Chinese))
}

func TestExplain_EvenAndNoBases(t *testing.T) {
	ev := primality.Evidence{Reason: primality.ReasonEven}
	assert.Equal(t, "Even and greater than 2, so it is composite.", Explain(primality.CandidateFromInt64(4), ev, English))
	assert.Equal(t, "偶数且大于 2，一定是合数。", Explain(primality.CandidateFromInt64(4), ev, Chinese))

	passed := primality.Evidence{Reason: primality.ReasonPassedWitnesses}
	assert.Contains(t, Explain(primality.CandidateFromInt64(2), passed, English), "bases none applicable")
}

func TestExplain_CanonicalNumberInText(t *testing.T) {
	c, v := classify(t, "+0561")
	assert.True(t, strings.HasPrefix(Explain(c, v.Evidence, Chinese), "561 能被 3 整除"))
}

// Every reason has non-empty text in every language.
func TestExplain_CoversEveryReason(t *testing.T) {
	reasons := []primality.Reason{
		primality.ReasonBelowMinimum, primality.ReasonSmallPrime, primality.ReasonDivisible,
		primality.ReasonEven, primality.ReasonFermatWitness, primality.ReasonPassedWitnesses,
	}
	for _, lang := range []Language{English, Chinese} {
		for _, r := range reasons {
			ev := primality.Evidence{Reason: r, Residue: big.NewInt(8), Witness: 3, Divisor: 3, SmallPrime: 3, Tested: []int64{2}}
			got := Explain(primality.CandidateFromInt64(9), ev, lang)
			assert.NotEmpty(t, got)
			assert.NotEqual(t, string(r), got, "lang=%s reason=%s", lang, r)
		}
	}
}

func TestHeadline(t *testing.T) {
	_, prime := classify(t, "97")
	_, comp := classify(t, "91")
	assert.Equal(t, "Probably prime", Headline(prime, English))
	assert.Equal(t, "Composite", Headline(comp, English))
	assert.Equal(t, "可能是素数", Headline(prime, Chinese))
	assert.Equal(t, "不是素数", Headline(comp, Chinese))
	assert.Equal(t, "Composite", Headline(comp, Language("xx")), "unknown languages fall back")
}

func TestFormatParseError(t *testing.T) {
	assert.Equal(t, "Please enter an integer.", FormatParseError(primality.ErrorKindEmpty, English))
	assert.Equal(t, "Integers only (no decimals or symbols).", FormatParseError(primality.ErrorKindNotAnInteger, English))
	assert.Equal(t, "This number is too large to parse.", FormatParseError(primality.ErrorKindTooLarge, English))
	assert.Equal(t, "请输入一个整数。", FormatParseError(primality.ErrorKindEmpty, Chinese))
	assert.Equal(t, "输入错误", InputErrorTitle(Chinese))
	assert.Equal(t, "Input is longer than 10 characters.", FormatTooLong(10, English))
}

func TestParse(t *testing.T) {
	for in, want := range map[string]Language{"en": English, "EN-gb": English, "zh": Chinese, "zh-CN": Chinese} {
		got, ok := Parse(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "fr", "!!"} {
		_, ok := Parse(in)
		assert.False(t, ok, in)
	}
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		name, header, explicit string
		want                   Language
	}{
		{"explicit wins", "en-US", "zh", Chinese},
		{"unsupported explicit ignored", "zh-CN", "fr", Chinese},
		{"header chinese", "zh-CN,zh;q=0.9,en;q=0.8", "", Chinese},
		{"header english", "en-GB,en;q=0.9", "", English},
		{"unsupported header", "fr-FR", "", English},
		{"malformed header", ";;;=", "", English},
		{"nothing", "", "", English},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Negotiate(tt.header, tt.explicit))
		})
	}
}
