package relations

import (
	"context"

	"github.com/cliptube/backend/internal/models"
)

// LikeStore captures the like persistence operations the toggle engine drives.
// Implemented by repositories.PostgresLikeRepository.
type LikeStore interface {
	Find(ctx context.Context, kind models.LikeKind, likedBy, targetID string) (models.Like, error)
	Create(ctx context.Context, like models.Like) error
	Delete(ctx context.Context, kind models.LikeKind, likedBy, targetID string) error
}

// NewLikeStore adapts a LikeStore to the engine's Store contract for one like
// kind, so each kind gets its own engine over the same underlying collection.
func NewLikeStore(store LikeStore, kind models.LikeKind) Store {
	return likeKindStore{store: store, kind: kind}
}

type likeKindStore struct {
	store LikeStore
	kind  models.LikeKind
}

func (s likeKindStore) Find(ctx context.Context, subjectID, targetID string) (Binding, error) {
	like, err := s.store.Find(ctx, s.kind, subjectID, targetID)
	if err != nil {
		return Binding{}, err
	}
	return Binding{ID: like.ID, SubjectID: like.LikedBy, TargetID: like.TargetID, CreatedAt: like.CreatedAt}, nil
}

func (s likeKindStore) Create(ctx context.Context, binding Binding) error {
	return s.store.Create(ctx, models.Like{
		ID:        binding.ID,
		LikedBy:   binding.SubjectID,
		Kind:      s.kind,
		TargetID:  binding.TargetID,
		CreatedAt: binding.CreatedAt,
	})
}

func (s likeKindStore) Delete(ctx context.Context, subjectID, targetID string) error {
	return s.store.Delete(ctx, s.kind, subjectID, targetID)
}

// SubscriptionStore captures the subscription persistence operations the
// toggle engine drives. Implemented by
// repositories.PostgresSubscriptionRepository.
type SubscriptionStore interface {
	Find(ctx context.Context, subscriberID, channelID string) (models.Subscription, error)
	Create(ctx context.Context, sub models.Subscription) error
	Delete(ctx context.Context, subscriberID, channelID string) error
}

// NewSubscriptionStore adapts a SubscriptionStore to the engine's Store
// contract. The subject is the subscriber, the target is the channel.
func NewSubscriptionStore(store SubscriptionStore) Store {
	return subscriptionStore{store: store}
}

type subscriptionStore struct {
	store SubscriptionStore
}

func (s subscriptionStore) Find(ctx context.Context, subjectID, targetID string) (Binding, error) {
	sub, err := s.store.Find(ctx, subjectID, targetID)
	if err != nil {
		return Binding{}, err
	}
	return Binding{ID: sub.ID, SubjectID: sub.SubscriberID, TargetID: sub.ChannelID, CreatedAt: sub.CreatedAt}, nil
}

func (s subscriptionStore) Create(ctx context.Context, binding Binding) error {
	return s.store.Create(ctx, models.Subscription{
		ID:           binding.ID,
		SubscriberID: binding.SubjectID,
		ChannelID:    binding.TargetID,
		CreatedAt:    binding.CreatedAt,
	})
}

func (s subscriptionStore) Delete(ctx context.Context, subjectID, targetID string) error {
	return s.store.Delete(ctx, subjectID, targetID)
}
