package joinplan

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/planetscale/joinplan/go/boost/joinplan/config"
	"github.com/planetscale/joinplan/go/boost/joinplan/operators"
	"github.com/planetscale/joinplan/go/boost/joinplan/schema"
)

// Session is the state accumulated over one compilation run: the operator
// graph shared by every statement, the catalog of base tables and the
// registry of names visible to later statements. It starts empty and only
// grows.
type Session struct {
	ID    uuid.UUID
	Label string

	Graph    *operators.Graph
	Catalog  *schema.Catalog
	Registry *schema.Registry

	log *zap.Logger
}

func NewSession(log *zap.Logger, cfg *config.Config) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.New()
	return &Session{
		ID:       id,
		Label:    cfg.Label,
		Graph:    operators.NewGraph(),
		Catalog:  schema.NewCatalog(cfg.SchemaEstimates()),
		Registry: schema.NewRegistry(),
		log:      log.With(zap.String("session", id.String()), zap.String("label", cfg.Label)),
	}
}

// register points name at node. A name that was already registered is
// replaced; the previous node stays in the graph.
func (s *Session) register(name string, node *operators.Node) {
	prev, replaced := s.Registry.Register(name, node.Idx)
	if replaced {
		s.log.Warn("relation name replaced", zap.String("name", name), prev.ZapField("previous"), node.Idx.ZapField("current"))
	}
}

// Relation returns the node name currently resolves to.
func (s *Session) Relation(name string) (*operators.Node, bool) {
	idx, ok := s.Registry.Lookup(name)
	if !ok {
		return nil, false
	}
	return s.Graph.Node(idx), true
}

// Views returns the leaf nodes of every view registered so far, ordered by name.
func (s *Session) Views() []*operators.Node {
	var views []*operators.Node
	for _, name := range s.Registry.Names() {
		if node, _ := s.Relation(name); node != nil {
			if _, ok := node.Op.(*operators.View); ok {
				views = append(views, node)
			}
		}
	}
	return views
}
