package service

import (
	"net/http"
	"strings"

	"github.com/skobelevs/gochat/internal/domain"
	"github.com/skobelevs/gochat/internal/errors"
)

type FriendsService interface {
	Friends(userId domain.UserId) ([]domain.User, error)
	Search(requesterId domain.UserId, emailFragment string) ([]domain.User, error)
	Add(requesterId, targetId domain.UserId) (domain.User, error)
}

type Friends struct {
	storage FriendStorage
}

type FriendStorage interface {
	UserById(id domain.UserId) (domain.User, error)
	FriendsOf(id domain.UserId) ([]domain.User, error)
	SearchUsers(fragment string, excludeId domain.UserId) ([]domain.User, error)
	AppendFriend(ownerId, friendId domain.UserId) error
}

func NewFriends(storage FriendStorage) FriendsService {
	return &Friends{storage}
}

func (f *Friends) Friends(userId domain.UserId) ([]domain.User, error) {
	return f.storage.FriendsOf(userId)
}

func (f *Friends) Search(requesterId domain.UserId, emailFragment string) ([]domain.User, error) {
	if strings.TrimSpace(emailFragment) == "" {
		return nil, &errors.ErrorWithStatusCode{Message: "Email is required for search", StatusCode: http.StatusBadRequest}
	}
	return f.storage.SearchUsers(emailFragment, requesterId)
}

// Add makes requester and target friends of each other. The two appends are
// independent writes: if the second fails after the first succeeded the edge
// stays asymmetric until the operation is retried.
func (f *Friends) Add(requesterId, targetId domain.UserId) (domain.User, error) {
	if targetId == 0 {
		return domain.User{}, &errors.ErrorWithStatusCode{Message: "User ID is required", StatusCode: http.StatusBadRequest}
	}

	target, err := f.storage.UserById(targetId)
	if err != nil {
		return domain.User{}, err
	}

	requester, err := f.storage.UserById(requesterId)
	if err != nil {
		return domain.User{}, err
	}
	for _, id := range requester.Friends {
		if id == targetId {
			return domain.User{}, &errors.ErrorWithStatusCode{Message: "User is already a friend", StatusCode: http.StatusConflict}
		}
	}

	if err := f.storage.AppendFriend(requesterId, targetId); err != nil {
		return domain.User{}, err
	}
	if err := f.storage.AppendFriend(targetId, requesterId); err != nil {
		return domain.User{}, err
	}

	target.Friends = append(target.Friends, requesterId)
	return target, nil
}
