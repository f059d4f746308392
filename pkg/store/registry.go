package store

import (
	"encoding/json"
	"fmt"

	"github.com/lindylearn/library-store/pkg/types"
)

// MutatorFunc applies one named mutation from its raw argument payload.
// The engine durably logs (name, args) pairs and replays them through this
// signature during sync catch-up.
type MutatorFunc func(tx types.WriteTransaction, args json.RawMessage) error

// Mutators is the named mutation registry. The names are the replicated
// wire names shared by every client; renaming one breaks replay of logs
// written by older clients.
var Mutators = map[string]MutatorFunc{
	"putArticleIfNotExists":  asEntity(PutArticleIfNotExists),
	"updateArticle":          asArgs(UpdateArticle),
	"importArticles":         asArgs(ImportArticles),
	"importArticleTexts":     asArgs(ImportArticleTexts),
	"importArticleLinks":     asArgs(ImportArticleLinks),
	"deleteArticle":          asID(DeleteArticle),
	"articleSetFavorite":     asArgs(ArticleSetFavorite),
	"articleTrackOpened":     asID(ArticleTrackOpened),
	"putTopic":               asEntity(PutTopic),
	"updateAllTopics":        asArgs(UpdateAllTopics),
	"moveArticlePosition":    asArgs(MoveArticlePosition),
	"articleAddMoveToQueue":  asArgs(ArticleAddMoveToQueue),
	"updateSettings":         asArgs(UpdateSettings),
	"updateUserInfo":         asArgs(UpdateUserInfo),
	"importEntries":          asArgs(ImportEntries),
	"setPartialSyncState":    asArgs(SetPartialSyncState),
	"putAnnotation":          asEntity(PutAnnotation),
	"updateAnnotation":       asArgs(UpdateAnnotation),
	"deleteAnnotation":       asID(DeleteAnnotation),
	"putFeedSubscription":    asEntity(PutFeedSubscription),
	"setFeedSubscribed":      asArgs(SetFeedSubscribed),
	"deleteFeedSubscription": asID(DeleteFeedSubscription),
}

// Mutate dispatches a named mutation against the given transaction.
func Mutate(tx types.WriteTransaction, name string, args json.RawMessage) error {
	fn, ok := Mutators[name]
	if !ok {
		return fmt.Errorf("%w: %q", types.ErrUnknownName, name)
	}
	if err := fn(tx, args); err != nil {
		return fmt.Errorf("mutator %s: %w", name, err)
	}
	return nil
}

// asArgs adapts a typed mutator to the raw registry signature.
func asArgs[A any](fn func(types.WriteTransaction, A) error) MutatorFunc {
	return func(tx types.WriteTransaction, raw json.RawMessage) error {
		var args A
		if err := json.Unmarshal(raw, &args); err != nil {
			return fmt.Errorf("%w: %v", types.ErrInvalidData, err)
		}
		return fn(tx, args)
	}
}

// asEntity adapts a mutator taking a pointer to a single entity payload.
func asEntity[A any](fn func(types.WriteTransaction, *A) error) MutatorFunc {
	return func(tx types.WriteTransaction, raw json.RawMessage) error {
		var args A
		if err := json.Unmarshal(raw, &args); err != nil {
			return fmt.Errorf("%w: %v", types.ErrInvalidData, err)
		}
		return fn(tx, &args)
	}
}

// asID adapts a mutator taking a bare id string payload.
func asID(fn func(types.WriteTransaction, string) error) MutatorFunc {
	return func(tx types.WriteTransaction, raw json.RawMessage) error {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return fmt.Errorf("%w: %v", types.ErrInvalidData, err)
		}
		return fn(tx, id)
	}
}
