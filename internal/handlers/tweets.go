package handlers

import (
	"net/http"

	"github.com/AnshRaj112/vidtube-backend/internal/response"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (h *Handler) CreateTweet(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	var req contentRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		return err
	}
	t, err := h.Tweets.Create(r.Context(), u.ID, req.Content)
	if err != nil {
		return err
	}
	response.Success(w, http.StatusCreated, t, "Tweet created successfully")
	return nil
}

func (h *Handler) UserTweets(w http.ResponseWriter, r *http.Request) error {
	owner, err := idParam(r, "userId")
	if err != nil {
		return err
	}
	tweets, err := h.Tweets.ListByUser(r.Context(), owner)
	if err != nil {
		return err
	}
	response.Success(w, http.StatusOK, tweets, "Tweets fetched successfully")
	return nil
}

func (h *Handler) UpdateTweet(w http.ResponseWriter, r *http.Request) error {
	var req contentRequest
	return h.ownedAction(w, r, "tweetId", func(id, actor primitive.ObjectID) (any, error) {
		if err := response.DecodeJSON(w, r, &req); err != nil {
			return nil, err
		}
		return h.Tweets.Update(r.Context(), id, actor, req.Content)
	}, "Tweet updated successfully")
}

func (h *Handler) DeleteTweet(w http.ResponseWriter, r *http.Request) error {
	return h.ownedAction(w, r, "tweetId", func(id, actor primitive.ObjectID) (any, error) {
		return struct{}{}, h.Tweets.Delete(r.Context(), id, actor)
	}, "Tweet deleted successfully")
}
