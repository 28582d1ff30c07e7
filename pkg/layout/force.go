package layout

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/matzehuels/roadmap/pkg/dag"
)

type vec struct{ x, y float64 }

func (v vec) add(o vec) vec { return vec{v.x + o.x, v.y + o.y} }
func (v vec) sub(o vec) vec { return vec{v.x - o.x, v.y - o.y} }
func (v vec) scale(f float64) vec { return vec{v.x * f, v.y * f} }
func (v vec) norm() float64 { return math.Hypot(v.x, v.y) }
func (v vec) finite() bool { return isFinite(v.x) && isFinite(v.y) }
func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Simulation is a spring-embedder over a snapshot of a graph. Each call to
// [Simulation.Step] advances one iteration, so a caller can spread the work
// over animation frames; [ForceDirected] runs it to completion.
//
// A Simulation is not safe for concurrent use.
type Simulation struct {
	opts  Options
	ids   []string
	pos   []vec
	vel   []vec
	links [][2]int
	iter  int
	rng   *rand.Rand
}

// NewSimulation captures the nodes and edges of g. Nodes with a position
// start there; the rest are placed uniformly at random inside the seed box,
// using a generator seeded from opts.Seed. Self-loops exert no force.
func NewSimulation(g *dag.DAG, opts Options) *Simulation {
	opts = opts.WithDefaults()
	seed := opts.Seed
	s := &Simulation{
		opts: opts,
		rng:  rand.New(rand.NewPCG(seed, seed^0xdeadbeef)),
	}

	nodes := g.Nodes()
	index := make(map[string]int, len(nodes))
	s.ids = make([]string, len(nodes))
	s.pos = make([]vec, len(nodes))
	s.vel = make([]vec, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
		s.ids[i] = n.ID
		if n.Position != nil {
			s.pos[i] = vec{n.Position.X, n.Position.Y}
		} else {
			s.pos[i] = vec{s.rng.Float64() * opts.SeedWidth, s.rng.Float64() * opts.SeedHeight}
		}
	}
	for _, e := range g.Edges() {
		if e.IsSelfLoop() {
			continue
		}
		s.links = append(s.links, [2]int{index[e.Source], index[e.Target]})
	}
	return s
}

// Iteration returns the number of completed steps.
func (s *Simulation) Iteration() int { return s.iter }

// Done reports whether all iterations have run.
func (s *Simulation) Done() bool { return s.iter >= s.opts.Iterations }

// Step runs one iteration: all-pairs repulsion, per-edge attraction, then
// integration scaled by the linear temperature 1 - i/iterations. It returns
// false once the simulation is done.
func (s *Simulation) Step() bool {
	if s.Done() {
		return false
	}
	k, c := s.opts.IdealLength, s.opts.Cooling
	temperature := 1 - float64(s.iter)/float64(s.opts.Iterations)

	for i := range s.pos {
		for j := i + 1; j < len(s.pos); j++ {
			d := s.pos[i].sub(s.pos[j])
			dist := d.norm()
			var dir vec
			if dist == 0 {
				dir = s.randomUnit()
			} else {
				dir = d.scale(1 / dist)
			}
			force := k * k / math.Max(dist, 1)
			push := dir.scale(force * c)
			s.vel[i] = s.vel[i].add(push)
			s.vel[j] = s.vel[j].sub(push)
		}
	}

	for _, l := range s.links {
		src, dst := l[0], l[1]
		d := s.pos[dst].sub(s.pos[src])
		dist := d.norm()
		if dist == 0 {
			continue
		}
		force := dist * dist / k
		pull := d.scale(force / dist * c)
		s.vel[src] = s.vel[src].add(pull)
		s.vel[dst] = s.vel[dst].sub(pull)
	}

	for i := range s.pos {
		v := s.vel[i]
		if speed := v.norm(); speed > s.opts.MaxSpeed {
			v = v.scale(s.opts.MaxSpeed / speed)
		}
		next := s.pos[i].add(v.scale(temperature))
		if !v.finite() || !next.finite() {
			s.vel[i] = vec{}
			continue
		}
		s.pos[i] = next
		s.vel[i] = v.scale(s.opts.Damping)
	}

	s.iter++
	return !s.Done()
}

func (s *Simulation) randomUnit() vec {
	a := s.rng.Float64() * 2 * math.Pi
	return vec{math.Cos(a), math.Sin(a)}
}

// Positions returns the current positions translated so that the smallest
// x and y both equal opts.Offset.
func (s *Simulation) Positions() map[string]dag.Position {
	out := make(map[string]dag.Position, len(s.ids))
	if len(s.ids) == 0 {
		return out
	}
	minX, minY := math.Inf(1), math.Inf(1)
	for _, p := range s.pos {
		minX, minY = math.Min(minX, p.x), math.Min(minY, p.y)
	}
	for i, id := range s.ids {
		out[id] = dag.Position{
			X: s.pos[i].x - minX + s.opts.Offset,
			Y: s.pos[i].y - minY + s.opts.Offset,
		}
	}
	return out
}

// ForceDirected runs a full simulation and returns a clone of g with the
// normalized positions. The context is checked between iterations.
//
// All-pairs repulsion makes each step O(V²); this is meant for roadmaps of
// up to a few hundred nodes.
func ForceDirected(ctx context.Context, g *dag.DAG, opts Options) (*dag.DAG, error) {
	if err := opts.WithDefaults().Validate(); err != nil {
		return nil, err
	}
	sim := NewSimulation(g, opts)
	for !sim.Done() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("force layout stopped after %d of %d iterations: %w",
				sim.Iteration(), sim.opts.Iterations, err)
		}
		sim.Step()
	}

	out := g.Clone()
	for id, p := range sim.Positions() {
		_ = out.SetPosition(id, p)
	}
	return out, nil
}
