package inmemdb

import (
	"sort"

	"github.com/trezcool/academia/core/academy"
)

// RecentAnnouncements returns the latest announcements first, at most limit of them (all when limit <= 0).
func (db *DB) RecentAnnouncements(limit int) ([]academy.Announcement, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	rows := db.announcements.query(nil)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ID > rows[j].ID })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (db *DB) checkAnnouncementDraft(d academy.AnnouncementDraft) error {
	if d.AudienceType != academy.AudienceStream {
		return nil
	}
	if _, ok := db.streams.get(academy.ID(d.StreamID.Int64)); !ok {
		return fieldError("stream_id", "stream not found")
	}
	return nil
}

// recipients returns the students an announcement is delivered to.
func (db *DB) recipients(a academy.Announcement) []academy.User {
	seen := make(map[academy.ID]bool)
	users := make([]academy.User, 0)
	for _, e := range db.enrollments.query(nil) {
		if seen[e.UserID] {
			continue
		}
		if a.AudienceType == academy.AudienceStream {
			co, ok := db.cohorts.get(e.CohortID)
			if !ok || int64(co.StreamID) != a.StreamID.Int64 {
				continue
			}
		}
		if usr, ok := db.users.get(e.UserID); ok {
			seen[e.UserID] = true
			users = append(users, *usr)
		}
	}
	return users
}

func (db *DB) CreateAnnouncement(d academy.AnnouncementDraft) (academy.Announcement, []academy.User, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if err := db.checkAnnouncementDraft(d); err != nil {
		return academy.Announcement{}, nil, err
	}
	a := db.announcements.insert(func(id academy.ID) academy.Announcement {
		return academy.Announcement{
			ID:           id,
			AudienceType: d.AudienceType,
			StreamID:     d.StreamID,
			Title:        d.Title,
			MessageBody:  d.MessageBody,
			CreatedAt:    nowFunc(),
		}
	})
	return a, db.recipients(a), nil
}

func (db *DB) UpdateAnnouncement(id academy.ID, d academy.AnnouncementDraft) (academy.Announcement, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	a, ok := db.announcements.get(id)
	if !ok {
		return academy.Announcement{}, academy.NotFound("announcement", id)
	}
	if err := db.checkAnnouncementDraft(d); err != nil {
		return academy.Announcement{}, err
	}
	a.AudienceType = d.AudienceType
	a.StreamID = d.StreamID
	a.Title = d.Title
	a.MessageBody = d.MessageBody
	return *a, nil
}

func (db *DB) DeleteAnnouncement(id academy.ID) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if !db.announcements.delete(id) {
		return academy.NotFound("announcement", id)
	}
	return nil
}
