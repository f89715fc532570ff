// Package annotation builds the per-gene table of protein-coding genes and
// their canonical exons.
package annotation

import "github.com/inodb/gtf3prime/internal/gtf"

// GeneRecord is one gene's output unit.
type GeneRecord struct {
	ID       string      // gene_id attribute
	GeneLine string      // Original gene line, without newline
	Exons    []*gtf.Line // Canonical exons in source order
}

// Table maps gene ID to GeneRecord and remembers insertion order.
type Table struct {
	genes map[string]*GeneRecord
	order []string
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{genes: make(map[string]*GeneRecord)}
}

// Put inserts a record. A record with the same ID is replaced and keeps its
// original position. Put reports whether a record was replaced.
func (t *Table) Put(g *GeneRecord) bool {
	_, replaced := t.genes[g.ID]
	if !replaced {
		t.order = append(t.order, g.ID)
	}
	t.genes[g.ID] = g
	return replaced
}

// Get returns a gene by ID, or nil if not found.
func (t *Table) Get(id string) *GeneRecord {
	return t.genes[id]
}

// Genes returns the records in insertion order.
func (t *Table) Genes() []*GeneRecord {
	genes := make([]*GeneRecord, 0, len(t.order))
	for _, id := range t.order {
		genes = append(genes, t.genes[id])
	}
	return genes
}

// Len returns the number of genes in the table.
func (t *Table) Len() int {
	return len(t.order)
}

// ExonCount returns the total number of exons across all genes.
func (t *Table) ExonCount() int {
	n := 0
	for _, g := range t.genes {
		n += len(g.Exons)
	}
	return n
}
