package translation

import "fmt"

// Kind classifies a translation failure
type Kind string

const (
	KindNoText      Kind = "no_text"
	KindUnavailable Kind = "unavailable"
	KindStatus      Kind = "status"
	KindTimeout     Kind = "timeout"
	KindConnection  Kind = "connection"
	KindOther       Kind = "other"
)

const (
	msgNoText      = "no text to translate"
	msgUnavailable = "translation unavailable"
	msgTimeout     = "translation request timed out"
	msgConnection  = "translation connection error"
)

// Error is a failed translation
type Error struct {
	Kind   Kind
	Status int
	Detail string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNoText:
		return msgNoText
	case KindUnavailable:
		return msgUnavailable
	case KindStatus:
		return fmt.Sprintf("translation failed: status %d", e.Status)
	case KindTimeout:
		return msgTimeout
	case KindConnection:
		return msgConnection
	default:
		return fmt.Sprintf("translation error: %s", e.Detail)
	}
}

// Request is a single translation job
type Request struct {
	Text   string `json:"text"`
	Source string `json:"source_lang"`
	Target string `json:"target_lang"`
}

// Result holds either translated text or an Error
type Result struct {
	Text string
	Err  *Error
}

// OK reports whether a translation was produced
func (r Result) OK() bool {
	return r.Err == nil
}

// Message renders the result as the single string shown to the user
func (r Result) Message() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return r.Text
}

func ok(text string) Result {
	return Result{Text: text}
}

func fail(kind Kind, detail string) Result {
	return Result{Err: &Error{Kind: kind, Detail: detail}}
}
