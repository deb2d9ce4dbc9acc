// Package judge submits code to a Judge0 instance and classifies its answer into a
// single outcome.
package judge

import (
	"algoprep/internal/domain/model"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

const (
	statusAccepted = 3

	successNoOutput  = "Code executed successfully with no output"
	fallbackNoOutput = "No output produced"
)

// Response is the subset of a Judge0 submission result the classifier reads. Empty
// strings stand for absent fields.
type Response struct {
	Stdout        string
	Stderr        string
	CompileOutput string
	// HasStatus is false when the response carried no status object.
	HasStatus         bool
	StatusID          int
	StatusDescription string
}

// ParseResponse extracts a Response from a Judge0 JSON body.
func ParseResponse(body []byte) (Response, error) {
	if !gjson.ValidBytes(body) {
		return Response{}, errors.New("judge response is not valid JSON")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return Response{}, errors.Newf("judge response is not an object: %s", doc.Type)
	}
	r := Response{
		Stdout:        doc.Get("stdout").String(),
		Stderr:        doc.Get("stderr").String(),
		CompileOutput: doc.Get("compile_output").String(),
	}
	if status := doc.Get("status"); status.IsObject() && status.Get("id").Exists() {
		r.HasStatus = true
		r.StatusID = int(status.Get("id").Int())
		r.StatusDescription = status.Get("description").String()
	}
	return r, nil
}

// Classify maps a response to exactly one outcome. Compiler output wins over
// stderr, which wins over the status code.
func Classify(r Response) model.Outcome {
	switch {
	case r.CompileOutput != "":
		return model.Outcome{Kind: model.OutcomeCompilationError, Text: r.CompileOutput}
	case r.Stderr != "":
		return model.Outcome{Kind: model.OutcomeRuntimeError, Text: r.Stderr}
	case r.HasStatus && r.StatusID == statusAccepted:
		return model.Outcome{Kind: model.OutcomeSuccess, Text: orDefault(r.Stdout, successNoOutput), StatusID: r.StatusID, StatusLabel: StatusLabel(r.StatusID)}
	case r.HasStatus:
		return model.Outcome{Kind: model.OutcomeStatusError, StatusID: r.StatusID, StatusLabel: StatusLabel(r.StatusID)}
	default:
		return model.Outcome{Kind: model.OutcomeSuccess, Text: orDefault(r.Stdout, fallbackNoOutput)}
	}
}

func TransportError(err error) model.Outcome {
	return model.Outcome{Kind: model.OutcomeTransportError, Text: err.Error()}
}

func MissingCredential() model.Outcome {
	return model.Outcome{
		Kind: model.OutcomeMissingCredential,
		Text: "RapidAPI key missing. Please add RAPIDAPI_KEY to your .env file",
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
