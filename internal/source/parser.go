package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
)

// Error variables for extractor errors
var (
	// ErrJSONPathNotFound is returned when the JSON path does not exist in the document
	ErrJSONPathNotFound = errors.New("JSON path not found in response")
	// ErrInvalidJSONPath is returned when the JSON path syntax is invalid
	ErrInvalidJSONPath = errors.New("invalid JSON path syntax")
	// ErrRegexNoMatch is returned when the regex pattern does not match the content
	ErrRegexNoMatch = errors.New("regex pattern did not match")
	// ErrInvalidRegexPattern is returned when the regex pattern is invalid
	ErrInvalidRegexPattern = errors.New("invalid regex pattern")
	// ErrNoCaptureGroup is returned when the regex pattern has no capture group
	ErrNoCaptureGroup = errors.New("regex pattern must contain at least one capture group")
	// ErrInvalidExtractorType is returned for an unknown extractor type
	ErrInvalidExtractorType = errors.New("invalid extractor type: must be 'json', 'regex', or 'html'")
	// ErrNoSelectorOrXPath is returned when an html extractor has neither a selector nor an xpath
	ErrNoSelectorOrXPath = errors.New("either selector or xpath must be provided")
	// ErrNoElementFound is returned when no element matches the selector/xpath
	ErrNoElementFound = errors.New("no element found matching selector")
	// ErrNoValueFound is returned when extraction produced an empty result
	ErrNoValueFound = errors.New("could not extract value from response")
)

// Extractor pulls a single string value (typically a version) out of a raw
// source response. Custom registry sources configure one per source.
type Extractor interface {
	// Extract returns the value found in content, or an error.
	Extract(content []byte) (string, error)
}

// JSONExtractor extracts a value using a dotted JSON path with optional
// array indexing, e.g. "info.version" or "releases[0].tag".
type JSONExtractor struct {
	// Path is the JSON path to the value
	Path string
}

// Extract returns the value at the configured path.
func (e *JSONExtractor) Extract(content []byte) (string, error) {
	if e.Path == "" {
		return "", ErrInvalidJSONPath
	}

	var data interface{}
	if err := json.Unmarshal(content, &data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	current := data
	for _, seg := range strings.Split(e.Path, ".") {
		field, indexes, err := splitIndexes(seg)
		if err != nil {
			return "", err
		}

		if field != "" {
			obj, ok := current.(map[string]interface{})
			if !ok {
				return "", fmt.Errorf("%w: expected object at %q", ErrJSONPathNotFound, field)
			}
			val, exists := obj[field]
			if !exists {
				return "", fmt.Errorf("%w: field %q not found", ErrJSONPathNotFound, field)
			}
			current = val
		}

		for _, idx := range indexes {
			arr, ok := current.([]interface{})
			if !ok {
				return "", fmt.Errorf("%w: expected array at index %d", ErrJSONPathNotFound, idx)
			}
			if idx < 0 || idx >= len(arr) {
				return "", fmt.Errorf("%w: index %d out of bounds (length %d)", ErrJSONPathNotFound, idx, len(arr))
			}
			current = arr[idx]
		}
	}

	value, ok := jsonScalar(current)
	if !ok {
		return "", fmt.Errorf("%w: value at path is not a scalar", ErrJSONPathNotFound)
	}
	return value, nil
}

// splitIndexes splits a path segment like "releases[0][1]" into the field
// name and its trailing array indexes.
func splitIndexes(seg string) (string, []int, error) {
	bracket := strings.Index(seg, "[")
	if bracket == -1 {
		if seg == "" {
			return "", nil, fmt.Errorf("%w: empty segment", ErrInvalidJSONPath)
		}
		return seg, nil, nil
	}

	field := seg[:bracket]
	rest := seg[bracket:]
	var indexes []int
	for rest != "" {
		if !strings.HasPrefix(rest, "[") {
			return "", nil, fmt.Errorf("%w: malformed index in %q", ErrInvalidJSONPath, seg)
		}
		closing := strings.Index(rest, "]")
		if closing == -1 {
			return "", nil, fmt.Errorf("%w: unclosed bracket in %q", ErrInvalidJSONPath, seg)
		}
		idx, err := strconv.Atoi(rest[1:closing])
		if err != nil || idx < 0 {
			return "", nil, fmt.Errorf("%w: invalid array index %q", ErrInvalidJSONPath, rest[1:closing])
		}
		indexes = append(indexes, idx)
		rest = rest[closing+1:]
	}
	return field, indexes, nil
}

// jsonScalar converts a decoded JSON leaf to a string
func jsonScalar(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10), true
		}
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}

// RegexExtractor extracts a value using a regular expression; the first
// capture group is the result.
type RegexExtractor struct {
	// Pattern is the regex pattern with at least one capture group
	Pattern string
	// compiled is the compiled regex (cached after first use)
	compiled *regexp.Regexp
}

// Extract returns the first capture group match in content.
func (e *RegexExtractor) Extract(content []byte) (string, error) {
	if e.compiled == nil {
		re, err := regexp.Compile(e.Pattern)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidRegexPattern, err)
		}
		e.compiled = re
	}

	if e.compiled.NumSubexp() < 1 {
		return "", ErrNoCaptureGroup
	}

	matches := e.compiled.FindSubmatch(content)
	if len(matches) < 2 {
		return "", ErrRegexNoMatch
	}

	value := string(matches[1])
	if value == "" {
		return "", fmt.Errorf("%w: capture group matched empty string", ErrRegexNoMatch)
	}
	return value, nil
}

// HTMLExtractor extracts a value from HTML using a CSS selector or an XPath
// expression, with optional regex post-processing of the matched text.
type HTMLExtractor struct {
	// Selector is the CSS selector for the target element
	Selector string
	// XPath is the XPath expression (alternative to Selector)
	XPath string
	// Pattern is an optional regex applied to the matched text
	Pattern string
	// compiled is the compiled regex (cached after first use)
	compiled *regexp.Regexp
}

// Extract returns the text of the first matching element.
func (e *HTMLExtractor) Extract(content []byte) (string, error) {
	if e.Selector == "" && e.XPath == "" {
		return "", ErrNoSelectorOrXPath
	}

	var text string
	var err error
	if e.Selector != "" {
		text, err = e.extractCSS(content)
	} else {
		text, err = e.extractXPath(content)
	}
	if err != nil {
		return "", err
	}

	if e.Pattern != "" {
		if e.compiled == nil {
			re, compileErr := regexp.Compile(e.Pattern)
			if compileErr != nil {
				return "", fmt.Errorf("%w: %v", ErrInvalidRegexPattern, compileErr)
			}
			e.compiled = re
		}
		matches := e.compiled.FindStringSubmatch(text)
		if len(matches) < 2 {
			return "", ErrRegexNoMatch
		}
		text = matches[1]
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoValueFound
	}
	return text, nil
}

func (e *HTMLExtractor) extractCSS(content []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	selection := doc.Find(e.Selector)
	if selection.Length() == 0 {
		return "", fmt.Errorf("%w: %q", ErrNoElementFound, e.Selector)
	}
	return selection.First().Text(), nil
}

func (e *HTMLExtractor) extractXPath(content []byte) (string, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	node, err := htmlquery.Query(doc, e.XPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	if node == nil {
		return "", fmt.Errorf("%w: %q", ErrNoElementFound, e.XPath)
	}
	return htmlquery.InnerText(node), nil
}

// NewExtractor creates an extractor for the given type.
// extractorType must be "json", "regex", or "html".
func NewExtractor(extractorType, path, pattern, selector, xpath string) (Extractor, error) {
	switch extractorType {
	case "json":
		if path == "" {
			return nil, ErrInvalidJSONPath
		}
		return &JSONExtractor{Path: path}, nil
	case "regex":
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRegexPattern, err)
		}
		if re.NumSubexp() < 1 {
			return nil, ErrNoCaptureGroup
		}
		return &RegexExtractor{Pattern: pattern, compiled: re}, nil
	case "html":
		if selector == "" && xpath == "" {
			return nil, ErrNoSelectorOrXPath
		}
		return &HTMLExtractor{Selector: selector, XPath: xpath, Pattern: pattern}, nil
	default:
		return nil, fmt.Errorf("%w: got %q", ErrInvalidExtractorType, extractorType)
	}
}
