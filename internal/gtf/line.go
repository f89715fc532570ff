// Package gtf parses GTF annotation lines.
package gtf

import (
	"strconv"
	"strings"

	"github.com/biogo/biogo/seq"
)

// Kind is the feature type of a GTF line.
type Kind int

const (
	Other Kind = iota
	Gene
	Exon
)

func (k Kind) String() string {
	switch k {
	case Gene:
		return "gene"
	case Exon:
		return "exon"
	default:
		return "other"
	}
}

// Column indexes of the nine GTF fields.
const (
	colChrom = iota
	colSource
	colFeature
	colStart
	colEnd
	colScore
	colStrand
	colFrame
	colAttributes

	numColumns
)

// attrTerminator closes the attribute block of every well-formed line.
const attrTerminator = `";`

// Line is a parsed GTF record. Fields keeps the raw columns so the line can
// be written back with only its coordinates changed.
type Line struct {
	Raw        string
	Fields     []string
	Kind       Kind
	Chrom      string
	Start      int64 // 1-based
	End        int64 // 1-based, inclusive
	Strand     seq.Strand
	Attributes map[string]string
}

// ParseLine parses a single GTF line.
func ParseLine(raw string) (*Line, error) {
	raw = strings.TrimRight(raw, "\r\n")

	fields := strings.Split(raw, "\t")
	if len(fields) < numColumns {
		return nil, &MalformedLineError{Line: raw, Reason: "expected 9 fields, got " + strconv.Itoa(len(fields))}
	}

	start, err := strconv.ParseInt(fields[colStart], 10, 64)
	if err != nil {
		return nil, &MalformedLineError{Line: raw, Reason: "parse start", Err: err}
	}

	end, err := strconv.ParseInt(fields[colEnd], 10, 64)
	if err != nil {
		return nil, &MalformedLineError{Line: raw, Reason: "parse end", Err: err}
	}

	attrs, err := parseAttributes(fields[colAttributes])
	if err != nil {
		return nil, err
	}

	return &Line{
		Raw:        raw,
		Fields:     fields,
		Kind:       parseKind(fields[colFeature]),
		Chrom:      fields[colChrom],
		Start:      start,
		End:        end,
		Strand:     parseStrand(fields[colStrand]),
		Attributes: attrs,
	}, nil
}

// parseAttributes parses the GTF attribute column.
// Format: key "value"; key "value";
func parseAttributes(attrStr string) (map[string]string, error) {
	block, ok := strings.CutSuffix(attrStr, attrTerminator)
	if !ok {
		return nil, &MalformedAttributeError{Attributes: attrStr, Token: attrStr}
	}

	attrs := make(map[string]string)
	for _, token := range strings.Split(block, `"; `) {
		key, value, ok := strings.Cut(token, ` "`)
		if !ok {
			return nil, &MalformedAttributeError{Attributes: attrStr, Token: token}
		}
		attrs[key] = value
	}

	return attrs, nil
}

func parseKind(s string) Kind {
	switch s {
	case "gene":
		return Gene
	case "exon":
		return Exon
	default:
		return Other
	}
}

// parseStrand converts the strand column. Anything other than + or - is
// seq.None and left for callers to reject.
func parseStrand(s string) seq.Strand {
	switch s {
	case "+":
		return seq.Plus
	case "-":
		return seq.Minus
	default:
		return seq.None
	}
}

// Attr returns the value of an attribute, or "" if absent.
func (l *Line) Attr(key string) string {
	return l.Attributes[key]
}

// Len returns the number of bases covered by the line.
func (l *Line) Len() int64 {
	return l.End - l.Start + 1
}

// StrandChar returns the raw strand column.
func (l *Line) StrandChar() string {
	return l.Fields[colStrand]
}

// WithCoords returns a copy of l with start and end replaced. The receiver is
// not modified.
func (l *Line) WithCoords(start, end int64) *Line {
	fields := make([]string, len(l.Fields))
	copy(fields, l.Fields)
	fields[colStart] = strconv.FormatInt(start, 10)
	fields[colEnd] = strconv.FormatInt(end, 10)

	c := *l
	c.Fields = fields
	c.Start = start
	c.End = end
	c.Raw = strings.Join(fields, "\t")
	return &c
}

// String re-joins the fields with tabs.
func (l *Line) String() string {
	return strings.Join(l.Fields, "\t")
}

// NormalizeChrom removes a "chr" prefix so GENCODE and Ensembl names compare
// equal.
func NormalizeChrom(chrom string) string {
	return strings.TrimPrefix(chrom, "chr")
}

// StripVersion removes the version suffix from an Ensembl ID.
// e.g., "ENST00000456328.2" -> "ENST00000456328"
func StripVersion(id string) string {
	if idx := strings.LastIndex(id, "."); idx != -1 {
		return id[:idx]
	}
	return id
}
