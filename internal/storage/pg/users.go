package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lib/pq"

	"github.com/skobelevs/gochat/internal/domain"
	internal_errors "github.com/skobelevs/gochat/internal/errors"
)

// =========================================================================
// Public methods (satisfy the service storage interfaces)
// =========================================================================

// SaveUser creates a new user inside a transaction.
// Writes deliberately run on a background-rooted context: a caller
// disconnect must not abort a write already in flight.
func (s *Storage) SaveUser(user domain.User) (domain.UserId, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id domain.UserId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.saveUser(tx, user)
		return err
	})
	return id, err
}

// User fetches a user by email, friend list included.
func (s *Storage) User(email domain.Email) (domain.User, error) {
	return s.user(s.db, email)
}

// UserById fetches a user by id, friend list included.
func (s *Storage) UserById(id domain.UserId) (domain.User, error) {
	return s.userById(s.db, id)
}

// FriendsOf resolves the owner's friend list into full user records.
func (s *Storage) FriendsOf(id domain.UserId) ([]domain.User, error) {
	owner, err := s.userById(s.db, id)
	if err != nil {
		return nil, err
	}
	return s.usersByIds(s.db, owner.Friends)
}

// SearchUsers matches the fragment case-insensitively against emails,
// excluding the requesting user. Result order is whatever the store returns.
func (s *Storage) SearchUsers(fragment string, excludeId domain.UserId) ([]domain.User, error) {
	rows, err := s.db.Query(`
	SELECT id, email, friends
	FROM users
	WHERE email ILIKE '%' || $1 || '%' AND id <> $2`, fragment, excludeId)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// AppendFriend appends friendId to the owner's friend list. It is a single
// write; the friends service issues the two directions independently.
func (s *Storage) AppendFriend(ownerId, friendId domain.UserId) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.appendFriend(tx, ownerId, friendId)
	})
}

// =========================================================================
// Internal methods (core database logic, transaction-agnostic)
// =========================================================================

func (s *Storage) saveUser(q Querier, user domain.User) (domain.UserId, error) {
	var id int64
	err := q.QueryRow("INSERT INTO users(email, password_hash) VALUES($1, $2) RETURNING id",
		user.Email, user.PassHash).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return -1, &internal_errors.ErrorWithStatusCode{Message: "Email already registered", StatusCode: http.StatusConflict}
		}
		return -1, fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

func (s *Storage) user(q Querier, email domain.Email) (domain.User, error) {
	var user domain.User
	err := q.QueryRow("SELECT id, email, password_hash, friends FROM users WHERE email = $1", email).
		Scan(&user.Id, &user.Email, &user.PassHash, &user.Friends)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
		}
		return domain.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

func (s *Storage) userById(q Querier, id domain.UserId) (domain.User, error) {
	var user domain.User
	err := q.QueryRow("SELECT id, email, friends FROM users WHERE id = $1", id).
		Scan(&user.Id, &user.Email, &user.Friends)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
		}
		return domain.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

func (s *Storage) usersByIds(q Querier, ids domain.Friends) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}

	rows, err := q.Query("SELECT id, email, friends FROM users WHERE id = ANY($1)", pq.Array([]int64(ids)))
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

func (s *Storage) appendFriend(q Querier, ownerId, friendId domain.UserId) error {
	result, err := q.Exec("UPDATE users SET friends = array_append(friends, $1) WHERE id = $2", friendId, ownerId)
	if err != nil {
		return fmt.Errorf("failed to append friend: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for friend append: %w", err)
	}
	if rowsAffected == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
	}
	return nil
}

func scanUsers(rows *sql.Rows) ([]domain.User, error) {
	users := []domain.User{}
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.Id, &user.Email, &user.Friends); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}
	return users, nil
}
