package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lindylearn/library-store/pkg/store"
	"github.com/lindylearn/library-store/pkg/types"
)

type handler struct {
	store Store
}

// listRecent serves GET /articles/recent. Query parameters: state
// (all/unread/read/favorite), topic, since (unix seconds), group=true for
// time buckets, years=true for year aggregation.
func (h *handler) listRecent(w http.ResponseWriter, r *http.Request) {
	state := store.StateFilter(r.URL.Query().Get("state"))
	topicID := r.URL.Query().Get("topic")

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		seconds, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, fmt.Errorf("%w: since: %v", types.ErrInvalidData, err))
			return
		}
		since = time.Unix(seconds, 0)
	}

	if r.URL.Query().Get("group") == "true" {
		aggregateYears := r.URL.Query().Get("years") == "true"
		var buckets []*store.ArticleBucket
		err := h.store.Query(func(tx types.ReadTransaction) error {
			var err error
			buckets, err = store.GroupRecentArticles(tx, since, state, topicID, aggregateYears)
			return err
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, buckets)
		return
	}

	var articles []*types.Article
	err := h.store.Query(func(tx types.ReadTransaction) error {
		var err error
		articles, err = store.ListRecentArticles(tx, since, state, topicID)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, articles)
}

func (h *handler) listQueue(w http.ResponseWriter, r *http.Request) {
	var articles []*types.Article
	err := h.store.Query(func(tx types.ReadTransaction) error {
		var err error
		articles, err = store.ListQueueArticles(tx)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, articles)
}

func (h *handler) listFavorites(w http.ResponseWriter, r *http.Request) {
	var articles []*types.Article
	err := h.store.Query(func(tx types.ReadTransaction) error {
		var err error
		articles, err = store.ListFavoriteArticles(tx)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, articles)
}

func (h *handler) getArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var article *types.Article
	err := h.store.Query(func(tx types.ReadTransaction) error {
		var err error
		article, err = store.GetArticle(tx, id)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, article)
}

func (h *handler) listTopics(w http.ResponseWriter, r *http.Request) {
	var groups []store.TopicGroup
	err := h.store.Query(func(tx types.ReadTransaction) error {
		var err error
		groups, err = store.GroupTopics(tx)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, groups)
}

func (h *handler) listTopicArticles(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var articles []*types.Article
	err := h.store.Query(func(tx types.ReadTransaction) error {
		var err error
		articles, err = store.ListTopicArticles(tx, id)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, articles)
}

func (h *handler) getProgress(w http.ResponseWriter, r *http.Request) {
	topicID := r.URL.Query().Get("topic")
	var progress store.ReadingProgress
	err := h.store.Query(func(tx types.ReadTransaction) error {
		var err error
		progress, err = store.GetReadingProgress(tx, topicID)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, progress)
}

func (h *handler) listPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.store.PendingMutations()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, pending)
}

// mutateRequest is the body of POST /mutate.
type mutateRequest struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

func (h *handler) mutate(w http.ResponseWriter, r *http.Request) {
	var req mutateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", types.ErrInvalidData, err))
		return
	}
	if err := h.store.Mutate(req.Name, req.Args); err != nil {
		writeError(w, err)
		return
	}
	version, err := h.store.Version()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]int64{"version": version})
}
