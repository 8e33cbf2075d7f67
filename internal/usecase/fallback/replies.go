package fallback

// Branch names reported with every decision.
const (
	BranchQuestion    = "question"
	BranchExclamation = "exclamation"
	BranchAgreement   = "agreement"
	BranchImage       = "image"
	BranchFiller      = "filler"
)

// Replies are the canned reply sets, one per branch.
type Replies struct {
	Question    []string `yaml:"question"`
	Exclamation []string `yaml:"exclamation"`
	Agreement   []string `yaml:"agreement"`
	Filler      []string `yaml:"filler"`
	// AgreementSuffixes trigger the agreement branch.
	AgreementSuffixes []string `yaml:"agreement_suffixes"`
}

// DefaultReplies returns the stock reply sets.
func DefaultReplies() Replies {
	return Replies{
		Question: []string{
			"ほんとにそれ知りたいの？(;´Д`)",
			"貴殿って興味津々なんだね(;´Д`)",
			"それより他に知るべきことがあるんじゃないか？(;´Д`)",
			"大事なことだけ聞いてくれ(;´Д`)",
		},
		Exclamation: []string{
			"へいへい(;´Д`)",
			"わかったよ(;´Д`)",
			"さすが(;´Д`)",
			"出来る限りがんばるよ(;´Д`)",
		},
		Agreement: []string{
			"そうなのか(;´Д`)",
			"そうなんだねえ(;´Д`)",
			"そうそう(;´Д`)俺も言おうと思ってた",
		},
		Filler: []string{
			"ああ(;´Д`)",
			"さすが(;´Д`)",
			"知らなかった(;´Д`)",
			"すごい(;´Д`)",
			"センスいいですね(;´Д`)",
			"そっすね(;´Д`)",
			"いいね(;´Д`)",
			"へえ(;´Д`)",
			"知らんよ(;´Д`)",
			"ああ(;´Д`)播磨灘",
			"それな(;´Д`)",
			"意外と好き(;´Д`)",
			"それ好き(;´Д`)",
			"よくやるよ(;´Д`)",
		},
		AgreementSuffixes: []string{"だよ", "んよ", "から"},
	}
}

// WithDefaults fills empty sets from DefaultReplies.
func (r Replies) WithDefaults() Replies {
	def := DefaultReplies()
	if len(r.Question) == 0 {
		r.Question = def.Question
	}
	if len(r.Exclamation) == 0 {
		r.Exclamation = def.Exclamation
	}
	if len(r.Agreement) == 0 {
		r.Agreement = def.Agreement
	}
	if len(r.Filler) == 0 {
		r.Filler = def.Filler
	}
	if len(r.AgreementSuffixes) == 0 {
		r.AgreementSuffixes = def.AgreementSuffixes
	}
	return r
}
