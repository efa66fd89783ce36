package inmemdb

import (
	"fmt"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core/academy"
)

func (db *DB) ListCertificates() ([]academy.Certificate, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return db.certificates.query(nil), nil
}

func (db *DB) IssueCertificate(d academy.CertificateDraft) (academy.Certificate, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	e, ok := db.enrollments.get(d.EnrollmentID)
	if !ok || e.UserID != d.UserID {
		return academy.Certificate{}, fieldError("enrollment_id", "enrollment not found for this user")
	}
	if db.certificates.exists(func(c *academy.Certificate) bool { return c.EnrollmentID == d.EnrollmentID && !c.Revoked }) {
		return academy.Certificate{}, academy.Conflict("enrollment %d already has a certificate", d.EnrollmentID)
	}

	now := nowFunc()
	return db.certificates.insert(func(id academy.ID) academy.Certificate {
		return academy.Certificate{
			ID:                id,
			UserID:            d.UserID,
			EnrollmentID:      d.EnrollmentID,
			CertificateNumber: fmt.Sprintf("CERT-%d-%06d", now.Year(), id),
			IssuedAt:          now,
		}
	}), nil
}

func (db *DB) RevokeCertificate(id academy.ID) (academy.Certificate, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	c, ok := db.certificates.get(id)
	if !ok {
		return academy.Certificate{}, academy.NotFound("certificate", id)
	}
	if c.Revoked {
		return academy.Certificate{}, academy.Conflict("certificate %s is already revoked", c.CertificateNumber)
	}
	c.Revoked = true
	c.RevokedAt = null.TimeFrom(nowFunc())
	return *c, nil
}

func (db *DB) DeleteCertificate(id academy.ID) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if !db.certificates.delete(id) {
		return academy.NotFound("certificate", id)
	}
	return nil
}
