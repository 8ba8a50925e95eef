// Package mock provides test double implementations of the extract
// collaborator interfaces.
//
// The mocks allow engine and pipeline tests to run without real parsing
// or classification and enable controlled, deterministic behavior via
// function fields:
//
//	parser := mock.NewParser()
//	parser.ParseFunc = func(ctx context.Context, content io.Reader, size int64, metadata []byte) (*extract.ParsedContent, error) {
//	    return &extract.ParsedContent{Text: "stub"}, nil
//	}
//
// Default behavior: the parser reads the content fully and returns it as
// text; the classifier labels everything "unknown".
package mock
