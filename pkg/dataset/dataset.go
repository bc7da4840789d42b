// Package dataset provides reference observed networks: a built-in copy of
// the classic Florentine marriage network and a plain edge-list reader for
// external datasets.
package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
)

// florentineFamilies indexes the 15 families of the marriage network.
var florentineFamilies = []string{
	"Acciaiuoli", "Albizzi", "Barbadori", "Bischeri", "Castellani",
	"Ginori", "Guadagni", "Lamberteschi", "Medici", "Pazzi",
	"Peruzzi", "Ridolfi", "Salviati", "Strozzi", "Tornabuoni",
}

var florentineMarriages = [][2]int64{
	{0, 8}, {1, 5}, {1, 6}, {1, 8}, {2, 4},
	{2, 8}, {3, 6}, {3, 10}, {3, 13}, {4, 10},
	{4, 13}, {6, 7}, {6, 14}, {8, 11}, {8, 12},
	{8, 14}, {9, 12}, {10, 13}, {11, 13}, {11, 14},
}

// Florentine returns the Florentine families marriage network: 15 nodes,
// 20 edges. Node IDs index FlorentineFamilies.
func Florentine() *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for i := range florentineFamilies {
		g.AddNode(simple.Node(i))
	}
	for _, e := range florentineMarriages {
		g.SetEdge(simple.Edge{F: simple.Node(e[0]), T: simple.Node(e[1])})
	}
	return g
}

// FlorentineFamilies returns the family names keyed by node ID.
func FlorentineFamilies() []string {
	out := make([]string, len(florentineFamilies))
	copy(out, florentineFamilies)
	return out
}

// Load returns a built-in dataset by name.
func Load(name string) (*simple.UndirectedGraph, error) {
	switch strings.ToLower(name) {
	case "florentine":
		return Florentine(), nil
	default:
		return nil, fmt.Errorf("unknown dataset %q (built-in: florentine)", name)
	}
}

// ReadEdgeList parses a whitespace-separated edge list: one "u v" integer
// pair per line, blank lines and #-comments skipped. Nodes are created as
// they appear; self-loops are rejected.
func ReadEdgeList(r io.Reader) (*simple.UndirectedGraph, error) {
	g := simple.NewUndirectedGraph()
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected \"u v\", got %q", lineNum, line)
		}
		u, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad node id %q: %w", lineNum, fields[0], err)
		}
		v, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad node id %q: %w", lineNum, fields[1], err)
		}
		if u == v {
			return nil, fmt.Errorf("line %d: self-loop on node %d", lineNum, u)
		}

		for _, id := range []int64{u, v} {
			if g.Node(id) == nil {
				g.AddNode(simple.Node(id))
			}
		}
		g.SetEdge(simple.Edge{F: simple.Node(u), T: simple.Node(v)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading edge list: %w", err)
	}
	return g, nil
}

// ReadEdgeListFile reads an edge-list file from disk.
func ReadEdgeListFile(path string) (*simple.UndirectedGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadEdgeList(f)
}
