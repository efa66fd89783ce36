package inmemdb

import (
	"strings"

	"github.com/trezcool/academia/core/academy"
)

func (db *DB) userByEmail(email string) (*academy.User, bool) {
	email = strings.ToLower(email)
	for _, usr := range db.users.rows {
		if strings.ToLower(usr.Email) == email {
			return usr, true
		}
	}
	return nil, false
}

func (db *DB) CreateUser(usr academy.User) (academy.User, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	return db.createUser(usr)
}

func (db *DB) createUser(usr academy.User) (academy.User, error) {
	if _, exists := db.userByEmail(usr.Email); exists {
		return academy.User{}, academy.ErrEmailExists
	}
	return db.users.insert(func(id academy.ID) academy.User {
		usr.ID = id
		return usr
	}), nil
}

func (db *DB) GetUser(id academy.ID) (academy.User, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	if usr, ok := db.users.get(id); ok {
		return *usr, nil
	}
	return academy.User{}, academy.NotFound("user", id)
}

func (db *DB) GetUserByEmail(email string) (academy.User, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	if usr, ok := db.userByEmail(email); ok {
		return *usr, nil
	}
	return academy.User{}, academy.NotFound("user", 0)
}

// ListUsers returns the users with role, or every user when role is empty.
func (db *DB) ListUsers(role string) ([]academy.User, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	return db.users.query(func(usr *academy.User) bool {
		return role == "" || usr.Role == role
	}), nil
}

func (db *DB) UpdateInstructor(id academy.ID, d academy.InstructorDraft) (academy.User, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	usr, ok := db.users.get(id)
	if !ok || usr.Role != academy.RoleInstructor {
		return academy.User{}, academy.NotFound("instructor", id)
	}
	if other, exists := db.userByEmail(d.Email); exists && other.ID != id {
		return academy.User{}, academy.ErrEmailExists
	}
	usr.Name = d.Name
	usr.Email = d.Email
	return *usr, nil
}

func (db *DB) DeleteUser(id academy.ID) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.users.get(id); !ok {
		return academy.NotFound("user", id)
	}
	leads := func(co *academy.Cohort) bool {
		return co.LeadInstructorID.Valid && academy.ID(co.LeadInstructorID.Int64) == id
	}
	if db.cohorts.exists(leads) {
		return academy.Conflict("user %d leads a cohort", id)
	}
	if db.enrollments.exists(func(e *enrollment) bool { return e.UserID == id }) {
		return academy.Conflict("user %d is enrolled in a cohort", id)
	}
	db.users.delete(id)
	return nil
}
