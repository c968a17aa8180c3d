package handlers

import (
	"net/http"

	"github.com/AnshRaj112/vidtube-backend/internal/models"
	"github.com/AnshRaj112/vidtube-backend/internal/response"
)

type likeState struct {
	IsLiked bool `json:"isLiked"`
}

type subscriptionState struct {
	IsSubscribed bool `json:"isSubscribed"`
}

func (h *Handler) ToggleVideoLike(w http.ResponseWriter, r *http.Request) error {
	return h.toggleLike(w, r, models.LikeVideo, "videoId")
}

func (h *Handler) ToggleCommentLike(w http.ResponseWriter, r *http.Request) error {
	return h.toggleLike(w, r, models.LikeComment, "commentId")
}

func (h *Handler) ToggleTweetLike(w http.ResponseWriter, r *http.Request) error {
	return h.toggleLike(w, r, models.LikeTweet, "tweetId")
}

func (h *Handler) toggleLike(w http.ResponseWriter, r *http.Request, target models.LikeTarget, param string) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	id, err := idParam(r, param)
	if err != nil {
		return err
	}
	liked, err := h.Likes.Toggle(r.Context(), target, id, u.ID)
	if err != nil {
		return err
	}
	msg := "Like removed"
	if liked {
		msg = "Liked successfully"
	}
	response.Success(w, http.StatusOK, likeState{IsLiked: liked}, msg)
	return nil
}

func (h *Handler) LikedVideos(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	videos, err := h.Likes.LikedVideos(r.Context(), u.ID)
	if err != nil {
		return err
	}
	response.Success(w, http.StatusOK, videos, "Liked videos fetched successfully")
	return nil
}

func (h *Handler) ToggleSubscription(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	channel, err := idParam(r, "channelId")
	if err != nil {
		return err
	}
	subscribed, err := h.Subscriptions.Toggle(r.Context(), u.ID, channel)
	if err != nil {
		return err
	}
	msg := "Unsubscribed successfully"
	if subscribed {
		msg = "Subscribed successfully"
	}
	response.Success(w, http.StatusOK, subscriptionState{IsSubscribed: subscribed}, msg)
	return nil
}

func (h *Handler) ChannelSubscribers(w http.ResponseWriter, r *http.Request) error {
	channel, err := idParam(r, "channelId")
	if err != nil {
		return err
	}
	subs, err := h.Subscriptions.Subscribers(r.Context(), channel)
	if err != nil {
		return err
	}
	response.Success(w, http.StatusOK, subs, "Subscribers fetched successfully")
	return nil
}

func (h *Handler) SubscribedChannels(w http.ResponseWriter, r *http.Request) error {
	subscriber, err := idParam(r, "subscriberId")
	if err != nil {
		return err
	}
	channels, err := h.Subscriptions.Channels(r.Context(), subscriber)
	if err != nil {
		return err
	}
	response.Success(w, http.StatusOK, channels, "Subscribed channels fetched successfully")
	return nil
}
