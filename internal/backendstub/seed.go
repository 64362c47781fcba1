package backendstub

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AddUser registers a sign-in account and its users row.
func (s *Store) AddUser(email, password, role string, cost int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	email = strings.ToLower(email)
	user, err := s.Create("users", Doc{
		"email":             email,
		"first_name":        strings.Split(email, "@")[0],
		"last_name":         "",
		"department":        "Administration",
		"requested_role":    role,
		"approved_acc_role": role,
		"status":            "Active",
	})
	if err != nil {
		return err
	}
	s.AddAccount(Account{ID: user["id"].(int64), Email: email, PasswordHash: hash, Role: role})
	return nil
}

// SeedDemo fills the store with a small campus so the CLI has something to show.
func (s *Store) SeedDemo() error {
	facilities := []Doc{
		{"name": "Main Library", "facility_type": "Library", "building": "Building A", "floor_level": "1", "capacity": 120, "status": "Available"},
		{"name": "Computer Lab 2", "facility_type": "Laboratory", "building": "Building C", "floor_level": "2", "capacity": 40, "status": "Available"},
		{"name": "Audio Visual Room", "facility_type": "Function Room", "building": "Building B", "floor_level": "3", "capacity": 80, "status": "Under Maintenance"},
	}
	equipment := []Doc{
		{"name": "Projector Epson EB-X51", "category": "Audio Visual", "status": "Working", "property_no": "PN-0001", "facility_id": int64(3)},
		{"name": "Laptop Lenovo T14", "category": "Computer", "status": "In Use", "property_no": "PN-0002"},
		{"name": "Microphone Shure SM58", "category": "Audio Visual", "status": "For Repair", "property_no": "PN-0003"},
	}
	supplies := []Doc{
		{"name": "Bond Paper A4", "category": "Office", "quantity": 40, "stock_unit": "ream", "status": "In Stock"},
		{"name": "Whiteboard Marker", "category": "Office", "quantity": 5, "stock_unit": "box", "status": "Low Stock"},
	}
	borrowing := []Doc{
		{"equipment_id": int64(1), "equipment_name": "Projector Epson EB-X51", "requester_name": "Ana Reyes", "purpose": "Thesis defense", "start_date": "2026-10-01", "end_date": "2026-10-02", "status": "Approved", "return_requested": true},
		{"equipment_id": int64(2), "equipment_name": "Laptop Lenovo T14", "requester_name": "Ben Santos", "purpose": "Seminar", "start_date": "2026-10-05", "end_date": "2026-10-06", "status": "Pending"},
	}
	booking := []Doc{
		{"facility_id": int64(2), "facility_name": "Computer Lab 2", "requester_name": "Carla Lim", "purpose": "Programming contest", "booking_date": "2026-10-20", "start_time": "08:00", "end_time": "17:00", "status": "Approved"},
	}
	acquiring := []Doc{
		{"supply_id": int64(1), "supply_name": "Bond Paper A4", "requester_name": "Dan Cruz", "quantity": 2, "request_date": "2026-10-10", "purpose": "Exams", "status": "Pending"},
	}
	notifications := []Doc{
		{"kind": "return", "request_type": "borrowing", "request_id": int64(1), "message": "Ana Reyes reported the projector returned"},
		{"kind": "request", "request_type": "acquiring", "request_id": int64(1), "message": "Dan Cruz requested 2 reams of bond paper"},
	}
	accountRequests := []Doc{
		{"email": "e.garcia@campus.edu", "first_name": "Eli", "last_name": "Garcia", "department": "Engineering", "requested_role": "Instructor"},
	}

	for resource, docs := range map[string][]Doc{
		"facilities":       facilities,
		"equipment":        equipment,
		"supplies":         supplies,
		"borrowing":        borrowing,
		"booking":          booking,
		"acquiring":        acquiring,
		"notifications":    notifications,
		"account-requests": accountRequests,
	} {
		for _, doc := range docs {
			if _, err := s.Create(resource, withDefaults(resource, doc)); err != nil {
				return err
			}
		}
	}
	return nil
}
