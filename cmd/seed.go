package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/frahmantamala/campus-resources/internal/core/datamodel/inventory"
	notificationrow "github.com/frahmantamala/campus-resources/internal/core/datamodel/notification"
	"github.com/frahmantamala/campus-resources/internal/notification"
	"github.com/frahmantamala/campus-resources/internal/request"
)

var seedClear bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the hosted database with sample inventory and notifications",
	Long:  `Seed the hosted database with sample data for development and testing purposes.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		db, err := openDB(cfg.Database, cfg.Observability.Logging.Level)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		w := cmd.OutOrStdout()
		return db.WithContext(cmd.Context()).Transaction(func(tx *gorm.DB) error {
			if seedClear {
				for _, table := range []string{"notifications", "acquiring", "booking", "borrowing", "maintenance_checklists", "supplies", "equipment", "facilities"} {
					if err := tx.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
						return fmt.Errorf("failed to clear %s: %w", table, err)
					}
				}
				fmt.Fprintln(w, "cleared existing rows")
			}
			return seedRows(tx, w)
		})
	},
}

func seedRows(tx *gorm.DB, w io.Writer) error {
	facilities := []inventory.Facility{
		{Name: "Audio Visual Room", FacilityType: "Room", Building: "Main", FloorLevel: "2", Capacity: 60, Status: "Available"},
		{Name: "Chemistry Lab", FacilityType: "Laboratory", Building: "Science", FloorLevel: "1", Capacity: 35, Status: "Available"},
		{Name: "Gymnasium", FacilityType: "Hall", Building: "Sports", FloorLevel: "1", Capacity: 400, Status: "Under Maintenance"},
	}
	for i := range facilities {
		var exists int64
		tx.Model(&inventory.Facility{}).Where("name = ?", facilities[i].Name).Count(&exists)
		if exists > 0 {
			fmt.Fprintln(w, "facility already exists:", facilities[i].Name)
			tx.Where("name = ?", facilities[i].Name).First(&facilities[i])
			continue
		}
		if err := tx.Create(&facilities[i]).Error; err != nil {
			return fmt.Errorf("failed to insert facility %s: %w", facilities[i].Name, err)
		}
		fmt.Fprintln(w, "seeded facility:", facilities[i].Name)
	}

	avr := facilities[0].ID
	equipment := []inventory.Equipment{
		{Name: "Projector", Category: "Electronics", Status: "Working", PropertyNo: "EQ-0001", FacilityID: &avr},
		{Name: "Microscope", Category: "Laboratory", Status: "Working", PropertyNo: "EQ-0002"},
		{Name: "Portable Speaker", Category: "Electronics", Status: "For Repair", PropertyNo: "EQ-0003"},
	}
	for i := range equipment {
		var exists int64
		tx.Model(&inventory.Equipment{}).Where("property_no = ?", equipment[i].PropertyNo).Count(&exists)
		if exists > 0 {
			fmt.Fprintln(w, "equipment already exists:", equipment[i].PropertyNo)
			tx.Where("property_no = ?", equipment[i].PropertyNo).First(&equipment[i])
			continue
		}
		if err := tx.Create(&equipment[i]).Error; err != nil {
			return fmt.Errorf("failed to insert equipment %s: %w", equipment[i].Name, err)
		}
		fmt.Fprintln(w, "seeded equipment:", equipment[i].Name)
	}

	supplies := []inventory.Supply{
		{Name: "Bond Paper A4", Category: "Office", Quantity: 120, StockUnit: "ream", Status: "In Stock"},
		{Name: "Whiteboard Marker", Category: "Office", Quantity: 4, StockUnit: "box", Status: "Low Stock"},
	}
	for i := range supplies {
		var exists int64
		tx.Model(&inventory.Supply{}).Where("name = ?", supplies[i].Name).Count(&exists)
		if exists > 0 {
			continue
		}
		if err := tx.Create(&supplies[i]).Error; err != nil {
			return fmt.Errorf("failed to insert supply %s: %w", supplies[i].Name, err)
		}
		fmt.Fprintln(w, "seeded supply:", supplies[i].Name)
	}

	var checklists int64
	tx.Model(&inventory.MaintenanceChecklist{}).Count(&checklists)
	if checklists == 0 && equipment[0].ID != 0 {
		row := inventory.MaintenanceChecklist{
			Title:         "Projector lamp inspection",
			ResourceType:  "equipment",
			ResourceID:    equipment[0].ID,
			ScheduledDate: "2025-07-01",
			Status:        "Pending",
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to insert maintenance checklist: %w", err)
		}
		fmt.Fprintln(w, "seeded maintenance checklist:", row.Title)
	}

	var pending int64
	tx.Model(&notificationrow.Notification{}).Where("status = ?", string(notification.StatusPending)).Count(&pending)
	if pending == 0 {
		rows := []notificationrow.Notification{
			{Kind: string(notification.KindReturn), RequestType: string(request.KindBorrowing), RequestID: 1,
				Message: "Borrower reported the projector as returned", Status: string(notification.StatusPending)},
			{Kind: string(notification.KindRequest), RequestType: string(request.KindBooking), RequestID: 1,
				Message: "New booking request for the Audio Visual Room", Status: string(notification.StatusPending)},
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to insert notifications: %w", err)
		}
		fmt.Fprintf(w, "seeded %d notifications\n", len(rows))
	}
	return nil
}

func init() {
	seedCmd.Flags().BoolVar(&seedClear, "clear", false, "delete existing rows before seeding")
}
