package siwo

import (
	"math"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/zerolog"

	"github.com/gilchrisn/local-community-search/pkg/graph"
)

// smallCommunitySize is the size below which a community is rescued by a
// second search from the best-connected shell vertex.
const smallCommunitySize = 3

// Searcher grows a community around a seed vertex. A Searcher is not safe for
// concurrent use; its caches are reused across sequential searches on the
// same graph and only the community and shell are cleared between seeds.
type Searcher struct {
	graph   *graph.Graph
	engine  *StrengthEngine
	logger  zerolog.Logger
	amend   bool
	timeout time.Duration

	seed      int
	community []int
	members   mapset.Set[int]
	shell     mapset.Set[int]
	status    Status
	progress  ProgressCallback
}

// NewSearcher creates a searcher bound to g. Self-loops are stripped from g
// before any search runs.
func NewSearcher(g *graph.Graph, config *Config, logger zerolog.Logger) *Searcher {
	if removed := g.RemoveSelfLoops(); removed > 0 {
		logger.Debug().Int("self_loops", removed).Msg("Removed self-loops before search")
	}
	s := newSearcher(g, NewStrengthEngine(g, config.StrengthVariant(), config.MaxCommonPolicy()), logger)
	s.amend = config.Amend()
	s.timeout = config.Timeout()
	return s
}

// newSearcher binds a searcher to an existing engine. Searchers sharing a
// graph must share its engine, since strengths are stored on the vertices.
func newSearcher(g *graph.Graph, engine *StrengthEngine, logger zerolog.Logger) *Searcher {
	return &Searcher{
		graph:     g,
		engine:    engine,
		logger:    logger,
		seed:      -1,
		community: make([]int, 0),
		members:   mapset.NewThreadUnsafeSet[int](),
		shell:     mapset.NewThreadUnsafeSet[int](),
		status:    StatusIdle,
	}
}

// Engine returns the strength engine backing this searcher
func (s *Searcher) Engine() *StrengthEngine {
	return s.engine
}

// Status returns the current lifecycle state
func (s *Searcher) Status() Status {
	return s.status
}

// SetProgressCallback registers a function called after every join
func (s *Searcher) SetProgressCallback(cb ProgressCallback) {
	s.progress = cb
}

// Community returns the current members in ascending order
func (s *Searcher) Community() []int {
	ids := make([]int, len(s.community))
	copy(ids, s.community)
	sort.Ints(ids)
	return ids
}

// Shell returns the current frontier in ascending order
func (s *Searcher) Shell() []int {
	ids := s.shell.ToSlice()
	sort.Ints(ids)
	return ids
}

// Reset clears the community and shell. Strength and common-neighbor caches
// are kept.
func (s *Searcher) Reset() {
	s.seed = -1
	s.community = s.community[:0]
	s.members.Clear()
	s.shell.Clear()
	s.status = StatusIdle
}

// Seed starts a new community at id. It returns an *InvalidSeedError and
// leaves the searcher untouched when id is not in the graph.
func (s *Searcher) Seed(id int) error {
	vertex, ok := s.graph.Vertex(id)
	if !ok {
		return &InvalidSeedError{Seed: id}
	}

	s.Reset()
	s.seed = id
	s.community = append(s.community, id)
	s.members.Add(id)
	s.shell.Append(vertex.NeighborIDs()...)
	s.shell.Remove(id)
	s.status = StatusSeeded

	s.engine.LocalStrength(id)
	return nil
}

// Search seeds the searcher and expands with the configured amendment flag
// and timeout.
func (s *Searcher) Search(seed int) (Result, error) {
	if err := s.Seed(seed); err != nil {
		return Result{Seed: seed, Status: StatusIdle}, err
	}
	return s.Expand(s.amend, s.timeout), nil
}

// Expand grows the seeded community until no shell vertex improves it, the
// shell is exhausted, or timeout elapses. A timeout is not an error: the
// community found so far is post-processed and returned with TimedOut set.
func (s *Searcher) Expand(amend bool, timeout time.Duration) Result {
	result := Result{Seed: s.seed}
	if s.status != StatusSeeded {
		result.Community = s.Community()
		result.Status = s.status
		return result
	}

	start := time.Now()
	s.status = StatusGrowing
	improvements := make(map[int]float64)

	for len(s.community) < s.graph.VertexCount() && s.shell.Cardinality() > 0 {
		if time.Since(start) > timeout {
			s.status = StatusTimedOut
			result.TimedOut = true
			s.logger.Warn().
				Int("seed", s.seed).
				Int("community_size", len(s.community)).
				Dur("timeout", timeout).
				Msg("Search timed out, keeping partial community")
			break
		}
		result.Iterations++

		shell := s.Shell()
		for _, id := range shell {
			s.engine.LocalStrength(id)
		}

		best, improvement := s.findBestNextVertex(improvements, shell)
		if s.shouldStop(improvement) {
			break
		}
		s.join(best)
		result.Joined++

		if s.progress != nil {
			s.progress(JoinEvent{
				Iteration:     result.Iterations,
				Vertex:        best,
				Improvement:   improvement,
				CommunitySize: len(s.community),
				ShellSize:     s.shell.Cardinality(),
			})
		}
	}

	if s.status == StatusGrowing {
		s.status = StatusConverged
	}
	result.Status = s.status

	if amend && len(s.community) < smallCommunitySize && s.shell.Cardinality() > 0 {
		s.status = StatusAmending
		result.Amended = s.amendSmallCommunities(timeout)
	}

	result.Dangling = s.mergeDanglingNodes()
	s.status = StatusMerged

	sort.Ints(s.community)
	s.status = StatusDone

	result.Community = s.Community()
	result.Elapsed = time.Since(start)

	s.logger.Debug().
		Int("seed", s.seed).
		Int("size", len(result.Community)).
		Int("iterations", result.Iterations).
		Int("amended", result.Amended).
		Int("dangling", result.Dangling).
		Str("status", string(result.Status)).
		Dur("elapsed", result.Elapsed).
		Msg("Search completed")

	return result
}

// findBestNextVertex folds the strength of every shell vertex towards the
// latest member into its accumulated improvement and returns the shell vertex
// with the largest one. shell must be sorted so ties go to the lowest id.
func (s *Searcher) findBestNextVertex(improvements map[int]float64, shell []int) (int, float64) {
	last := s.community[len(s.community)-1]
	for _, id := range shell {
		if _, ok := improvements[id]; !ok {
			improvements[id] = s.engine.StrengthOf(id, last)
		} else if s.graph.HasEdge(id, last) {
			improvements[id] += s.engine.StrengthOf(id, last)
		}
	}
	delete(improvements, last)

	best := -1
	bestImprovement := math.Inf(-1)
	for _, id := range shell {
		if improvements[id] > bestImprovement {
			best = id
			bestImprovement = improvements[id]
		}
	}
	return best, bestImprovement
}

// shouldStop applies the minimum improvement rule. Variant B scores sit in a
// higher range, so past the first few members its floor is raised by one.
func (s *Searcher) shouldStop(improvement float64) bool {
	if s.engine.Variant() == VariantB && len(s.community) > smallCommunitySize {
		return improvement < MinImprovement+1.0
	}
	return improvement < MinImprovement
}

func (s *Searcher) join(id int) {
	s.addMember(id)
	s.shell.Append(s.graph.Neighbors(id)...)
	s.shell.RemoveAll(s.community...)
}

func (s *Searcher) addMember(id int) {
	s.community = append(s.community, id)
	s.members.Add(id)
}

// amendSmallCommunities runs one non-amending search from the shell vertex
// with the largest degree and unions its community into this one. The rescue
// search reuses this searcher's engine so it never rescores vertices that
// the engine already marked as computed.
func (s *Searcher) amendSmallCommunities(timeout time.Duration) int {
	start := -1
	largest := math.Inf(-1)
	for _, id := range s.Shell() {
		if degree := s.graph.Degree(id); degree > largest {
			start = id
			largest = degree
		}
	}

	rescue := newSearcher(s.graph, s.engine, s.logger)
	if err := rescue.Seed(start); err != nil {
		s.logger.Error().Err(err).Int("seed", s.seed).Msg("Amendment seed rejected")
		return 0
	}
	found := rescue.Expand(false, timeout)

	added := 0
	for _, id := range found.Community {
		if !s.members.Contains(id) {
			s.addMember(id)
			added++
		}
	}
	s.shell.RemoveAll(s.community...)

	s.logger.Debug().
		Int("seed", s.seed).
		Int("amend_seed", start).
		Int("added", added).
		Msg("Amended small community")
	return added
}

// mergeDanglingNodes absorbs every degree-1 neighbor of the community
func (s *Searcher) mergeDanglingNodes() int {
	neighborhood := mapset.NewThreadUnsafeSet[int]()
	for _, id := range s.community {
		neighborhood.Append(s.graph.Neighbors(id)...)
	}

	candidates := neighborhood.ToSlice()
	sort.Ints(candidates)

	merged := 0
	for _, id := range candidates {
		if s.members.Contains(id) {
			continue
		}
		if s.graph.Degree(id) == 1.0 {
			s.addMember(id)
			s.shell.Remove(id)
			merged++
		}
	}
	return merged
}
