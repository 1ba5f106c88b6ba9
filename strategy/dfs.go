package strategy

import "github.com/arbiterlabs/arbiter/op"

// dfsFrame is one node of the exploration tree: how many alternatives
// were available at this decision point, and which one is currently
// selected.
type dfsFrame struct {
	alternatives int
	chosen       int
}

// DFS enumerates the program's decision tree exhaustively, in order
// (spec.md §4.4, I5). Each iteration replays the same prefix of past
// decisions, then explores one new path; PrepareNextIteration
// backtracks to the deepest choice point with an untried alternative,
// returning false once the whole tree has been visited.
type DFS struct {
	frames   []dfsFrame
	position int
}

// NewDFS creates a fresh DFS strategy.
func NewDFS() *DFS {
	return &DFS{}
}

func (s *DFS) Name() string { return "dfs" }

// next is the shared decision-tree walk used by ChooseNext/ChooseBool/
// ChooseInt: it returns the index (into however many alternatives the
// caller has) selected for the choice point at the current tree depth.
func (s *DFS) next(alternatives int) int {
	if alternatives <= 0 {
		s.position++
		return 0
	}
	if s.position < len(s.frames) {
		f := s.frames[s.position]
		s.position++
		return f.chosen
	}
	s.frames = append(s.frames, dfsFrame{alternatives: alternatives, chosen: 0})
	s.position++
	return 0
}

func (s *DFS) ChooseNext(_ op.PointKind, enabled []op.ID) (op.ID, error) {
	ordered := stableSort(enabled)
	return ordered[s.next(len(ordered))], nil
}

func (s *DFS) ChooseBool() (bool, error) {
	return s.next(2) == 1, nil
}

func (s *DFS) ChooseInt(upper int) (int, error) {
	if upper <= 0 {
		return 0, nil
	}
	return s.next(upper), nil
}

// PrepareNextIteration resets the replay cursor to the root and
// backtracks to the deepest frame with an untried alternative,
// incrementing it. It reports false once every frame back to the root
// is exhausted, meaning the whole reachable decision tree has been
// visited (I5).
func (s *DFS) PrepareNextIteration() bool {
	s.position = 0
	for len(s.frames) > 0 {
		last := &s.frames[len(s.frames)-1]
		if last.chosen+1 < last.alternatives {
			last.chosen++
			return true
		}
		s.frames = s.frames[:len(s.frames)-1]
	}
	return false
}

// Visited reports how many decision points are currently on the
// exploration stack; exposed for tests asserting exhaustiveness.
func (s *DFS) Visited() int { return len(s.frames) }
