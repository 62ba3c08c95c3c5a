package inventory

import (
	"context"
	"log"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/corralworks/corral/internal/db/models"
	"github.com/corralworks/corral/internal/events"
	"github.com/corralworks/corral/internal/repository"
	"github.com/corralworks/corral/internal/telemetry"
)

// Service implements cluster inventory operations over nodes and profiles.
// Mutations that change observable state publish events on the bus so feed
// subscribers track the cluster without polling.
type Service struct {
	nodes      repository.NodeRepository
	swProfiles repository.SoftwareProfileRepository
	hwProfiles repository.HardwareProfileRepository
	bus        *events.Bus
}

// NewService creates the inventory service.
func NewService(
	nodes repository.NodeRepository,
	swProfiles repository.SoftwareProfileRepository,
	hwProfiles repository.HardwareProfileRepository,
	bus *events.Bus,
) *Service {
	return &Service{
		nodes:      nodes,
		swProfiles: swProfiles,
		hwProfiles: hwProfiles,
		bus:        bus,
	}
}

// ListNodes returns all nodes, optionally narrowed by a tag filter
// expression evaluated against each node's tag map.
func (s *Service) ListNodes(ctx context.Context, tagFilter string) ([]models.Node, error) {
	ctx, span := telemetry.StartSpan(ctx, "corral/services/inventory", "inventory.ListNodes",
		attribute.String("inventory.tag_filter", tagFilter),
	)
	defer span.End()

	if err := CompileTagFilter(tagFilter); err != nil {
		return nil, err
	}

	nodes, err := s.nodes.List(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if tagFilter == "" {
		return nodes, nil
	}

	filtered := nodes[:0]
	for _, node := range nodes {
		if MatchTagFilter(tagFilter, node.Tags) {
			filtered = append(filtered, node)
		}
	}
	return filtered, nil
}

// GetNode returns one node by name.
func (s *Service) GetNode(ctx context.Context, name string) (*models.Node, error) {
	return s.nodes.GetByName(ctx, name)
}

// CreateNode registers a new node and publishes node-created.
func (s *Service) CreateNode(ctx context.Context, node *models.Node) error {
	if node.GUID == "" {
		node.GUID = uuid.NewString()
	}
	if node.State == "" {
		node.State = models.NodeStateCreated
	}
	if node.Tags == nil {
		node.Tags = models.TagMap{}
	}
	if err := s.nodes.Create(ctx, node); err != nil {
		return err
	}

	s.publish(events.NameNodeCreated, events.NodeStateChanged{
		Name:  node.Name,
		State: node.State,
	})
	return nil
}

// UpdateNodeState transitions a node to a new lifecycle state and publishes
// node-state-changed. Setting the current state again is a no-op and
// publishes nothing.
func (s *Service) UpdateNodeState(ctx context.Context, name, state string) (*models.Node, error) {
	ctx, span := telemetry.StartSpan(ctx, "corral/services/inventory", "inventory.UpdateNodeState",
		attribute.String("node.name", name),
		attribute.String("node.state", state),
	)
	defer span.End()

	node, err := s.nodes.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if node.State == state {
		return node, nil
	}

	previous := node.State
	node.State = state
	if err := s.nodes.Update(ctx, node); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(events.NameNodeStateChanged, events.NodeStateChanged{
		Name:          node.Name,
		State:         node.State,
		PreviousState: previous,
	})
	return node, nil
}

// UpdateNodeTags replaces a node's tag map and publishes node-tags-changed
// when the map actually differs.
func (s *Service) UpdateNodeTags(ctx context.Context, name string, tags map[string]string) (*models.Node, error) {
	node, err := s.nodes.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	previous := node.Tags.Clone()
	next := models.TagMap(tags)
	if next == nil {
		next = models.TagMap{}
	}
	if tagsEqual(previous, next) {
		return node, nil
	}

	node.Tags = next
	if err := s.nodes.Update(ctx, node); err != nil {
		return nil, err
	}

	s.publish(events.NameNodeTagsChanged, events.NodeTagsChanged{
		Name:         node.Name,
		Tags:         node.Tags,
		PreviousTags: previous,
	})
	return node, nil
}

// DeleteNode removes a node and publishes node-deleted.
func (s *Service) DeleteNode(ctx context.Context, name string) error {
	node, err := s.nodes.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if err := s.nodes.Delete(ctx, node.ID); err != nil {
		return err
	}

	s.publish(events.NameNodeDeleted, events.NodeStateChanged{
		Name:          node.Name,
		State:         models.NodeStateDeleted,
		PreviousState: node.State,
	})
	return nil
}

// ListSoftwareProfiles returns all software profiles, optionally narrowed by
// a tag filter expression.
func (s *Service) ListSoftwareProfiles(ctx context.Context, tagFilter string) ([]models.SoftwareProfile, error) {
	if err := CompileTagFilter(tagFilter); err != nil {
		return nil, err
	}

	profiles, err := s.swProfiles.List(ctx)
	if err != nil {
		return nil, err
	}
	if tagFilter == "" {
		return profiles, nil
	}

	filtered := profiles[:0]
	for _, p := range profiles {
		if MatchTagFilter(tagFilter, p.Tags) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// GetSoftwareProfile returns one software profile by name.
func (s *Service) GetSoftwareProfile(ctx context.Context, name string) (*models.SoftwareProfile, error) {
	return s.swProfiles.GetByName(ctx, name)
}

// CreateSoftwareProfile registers a new software profile.
func (s *Service) CreateSoftwareProfile(ctx context.Context, profile *models.SoftwareProfile) error {
	if profile.Tags == nil {
		profile.Tags = models.TagMap{}
	}
	return s.swProfiles.Create(ctx, profile)
}

// UpdateSoftwareProfileTags replaces a software profile's tag map and
// publishes software-profile-tags-changed when the map actually differs.
func (s *Service) UpdateSoftwareProfileTags(ctx context.Context, name string, tags map[string]string) (*models.SoftwareProfile, error) {
	profile, err := s.swProfiles.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	previous := profile.Tags.Clone()
	next := models.TagMap(tags)
	if next == nil {
		next = models.TagMap{}
	}
	if tagsEqual(previous, next) {
		return profile, nil
	}

	profile.Tags = next
	if err := s.swProfiles.Update(ctx, profile); err != nil {
		return nil, err
	}

	s.publish(events.NameSoftwareProfileTagsChanged, events.SoftwareProfileTagsChanged{
		Name:         profile.Name,
		Tags:         profile.Tags,
		PreviousTags: previous,
	})
	return profile, nil
}

// ListHardwareProfiles returns all hardware profiles.
func (s *Service) ListHardwareProfiles(ctx context.Context) ([]models.HardwareProfile, error) {
	return s.hwProfiles.List(ctx)
}

// GetHardwareProfile returns one hardware profile by name.
func (s *Service) GetHardwareProfile(ctx context.Context, name string) (*models.HardwareProfile, error) {
	return s.hwProfiles.GetByName(ctx, name)
}

// CreateHardwareProfile registers a new hardware profile.
func (s *Service) CreateHardwareProfile(ctx context.Context, profile *models.HardwareProfile) error {
	if profile.Tags == nil {
		profile.Tags = models.TagMap{}
	}
	return s.hwProfiles.Create(ctx, profile)
}

func (s *Service) publish(name string, payload any) {
	if s.bus == nil {
		return
	}
	event, err := events.New(name, payload)
	if err != nil {
		log.Printf("inventory: failed to build %s event: %v", name, err)
		return
	}
	s.bus.Publish(event)
}

func tagsEqual(a, b models.TagMap) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
