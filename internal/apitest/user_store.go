package apitest

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jrsteele09/go-finance-client/internal/utils"
	"github.com/jrsteele09/go-finance-client/users"
	"golang.org/x/crypto/bcrypt"
)

var (
	errUserNotFound  = errors.New("user not found")
	errEmailTaken    = errors.New("email already registered")
	errUsernameTaken = errors.New("username already taken")
)

type storedUser struct {
	users.User
	passwordHash []byte
}

type userStore struct {
	users       map[int64]*storedUser
	emailIDs    map[string]int64
	usernameIDs map[string]int64
	nextID      int64
	lock        sync.RWMutex
}

func newUserStore() *userStore {
	return &userStore{
		users:       make(map[int64]*storedUser),
		emailIDs:    make(map[string]int64),
		usernameIDs: make(map[string]int64),
	}
}

func (us *userStore) Create(email, username, password string, fullName *string, role users.RoleType) (users.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return users.User{}, err
	}

	us.lock.Lock()
	defer us.lock.Unlock()

	if _, ok := us.emailIDs[email]; ok {
		return users.User{}, errEmailTaken
	}
	if _, ok := us.usernameIDs[username]; ok {
		return users.User{}, errUsernameTaken
	}

	us.nextID++
	u := &storedUser{
		User: users.User{
			Profile: users.Profile{
				ID:       us.nextID,
				Email:    email,
				Username: username,
				FullName: fullName,
				Role:     role,
				IsActive: true,
			},
			CreatedAt: utils.Timestamp{Time: time.Now().UTC()},
		},
		passwordHash: hash,
	}
	us.users[u.ID] = u
	us.emailIDs[email] = u.ID
	us.usernameIDs[username] = u.ID
	return u.User, nil
}

// Authenticate accepts the username or the email as login.
func (us *userStore) Authenticate(login, password string) (users.User, bool) {
	us.lock.RLock()
	id, ok := us.usernameIDs[login]
	if !ok {
		id, ok = us.emailIDs[login]
	}
	var u *storedUser
	if ok {
		u = us.users[id]
	}
	us.lock.RUnlock()

	if u == nil {
		return users.User{}, false
	}
	if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) != nil {
		return users.User{}, false
	}
	return u.User, true
}

func (us *userStore) GetByID(id int64) (users.User, error) {
	us.lock.RLock()
	defer us.lock.RUnlock()

	u, ok := us.users[id]
	if !ok {
		return users.User{}, errUserNotFound
	}
	return u.User, nil
}

func (us *userStore) List(offset, limit int) []users.User {
	us.lock.RLock()
	defer us.lock.RUnlock()

	list := make([]users.User, 0, len(us.users))
	for _, u := range us.users {
		list = append(list, u.User)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return page(list, offset, limit)
}

func (us *userStore) Update(id int64, in users.Input) (users.User, error) {
	var hash []byte
	if in.Password != nil {
		var err error
		if hash, err = bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.MinCost); err != nil {
			return users.User{}, err
		}
	}

	us.lock.Lock()
	defer us.lock.Unlock()

	u, ok := us.users[id]
	if !ok {
		return users.User{}, errUserNotFound
	}
	if in.Email != nil && *in.Email != u.Email {
		if _, taken := us.emailIDs[*in.Email]; taken {
			return users.User{}, errEmailTaken
		}
		delete(us.emailIDs, u.Email)
		u.Email = *in.Email
		us.emailIDs[u.Email] = id
	}
	if in.Username != nil && *in.Username != u.Username {
		if _, taken := us.usernameIDs[*in.Username]; taken {
			return users.User{}, errUsernameTaken
		}
		delete(us.usernameIDs, u.Username)
		u.Username = *in.Username
		us.usernameIDs[u.Username] = id
	}
	if in.FullName != nil {
		u.FullName = in.FullName
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if hash != nil {
		u.passwordHash = hash
	}
	return u.User, nil
}

func (us *userStore) Delete(id int64) error {
	us.lock.Lock()
	defer us.lock.Unlock()

	u, ok := us.users[id]
	if !ok {
		return errUserNotFound
	}
	delete(us.emailIDs, u.Email)
	delete(us.usernameIDs, u.Username)
	delete(us.users, id)
	return nil
}

func page[T any](list []T, offset, limit int) []T {
	if offset >= len(list) {
		return []T{}
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}
