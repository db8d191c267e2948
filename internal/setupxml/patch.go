package setupxml

import (
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/beevik/etree"
)

var encodingPattern = regexp.MustCompile(`encoding\s*=\s*("[^"]*"|'[^']*')`)

// ErrMalformedTemplate is returned when setup.xml cannot be parsed or lacks
// an element the patcher needs.
var ErrMalformedTemplate = errors.New("malformed setup.xml template")

type MissingElementError struct {
	Element string
}

func (e *MissingElementError) Error() string {
	return fmt.Sprintf("element <%s> not found in setup.xml", e.Element)
}

func (e *MissingElementError) Unwrap() error {
	return ErrMalformedTemplate
}

type PatchOptions struct {
	// BaseURL is the resolved address, without scheme.
	BaseURL       string
	TrailingSlash bool
	Settings      Settings
}

// Change records the text of one element before and after patching.
type Change struct {
	Element string
	Before  string
	After   string
	Secret  bool
}

type PatchResult struct {
	Document string
	Changes  []Change
}

// BaseURLValue is the text written to <baseUrl> for a resolved address.
func BaseURLValue(baseURL string, trailingSlash bool) string {
	value := "http://" + baseURL
	if trailingSlash {
		value += "/"
	}

	return value
}

// Patch rewrites the text of the baseUrl, bigParentDirectory and admin/email
// elements of document. Settings that are absent clear their element. Nothing
// but element text is changed.
func Patch(document string, opts *PatchOptions) (*PatchResult, error) {
	doc := etree.NewDocument()
	// ConfigMap data is always UTF-8 whatever encoding the declaration names.
	doc.ReadSettings.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	err := doc.ReadFromString(document)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTemplate, err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedTemplate)
	}

	result := &PatchResult{}

	set := func(name, value string, secret bool) error {
		elem := root.SelectElement(name)
		if elem == nil {
			return &MissingElementError{Element: name}
		}

		result.Changes = append(result.Changes, Change{
			Element: name,
			Before:  elem.Text(),
			After:   value,
			Secret:  secret,
		})
		elem.SetText(value)

		return nil
	}

	err = set(BaseURLElement, BaseURLValue(opts.BaseURL, opts.TrailingSlash), false)
	if err != nil {
		return nil, err
	}

	err = set(BigParentDirectoryElement, BigParentDirectory, false)
	if err != nil {
		return nil, err
	}

	for _, field := range Fields {
		err = set(field.Element, opts.Settings[field.EnvVar], field.Secret)
		if err != nil {
			return nil, err
		}
	}

	declareUTF8(doc)

	result.Document, err = doc.WriteToString()
	if err != nil {
		return nil, fmt.Errorf("could not serialize setup.xml: %w", err)
	}

	return result, nil
}

// declareUTF8 makes the XML declaration name the encoding the document is
// actually stored in.
func declareUTF8(doc *etree.Document) {
	for _, token := range doc.Child {
		inst, ok := token.(*etree.ProcInst)
		if !ok || inst.Target != "xml" {
			continue
		}

		inst.Inst = encodingPattern.ReplaceAllString(inst.Inst, `encoding="UTF-8"`)

		return
	}
}
