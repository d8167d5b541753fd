// Bulk-imports subjects and schedule slots for a user from a JSON file.
//
// Usage: schedule-importer -user 42 -file ./schedule.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"faltula/database"
	"faltula/models"

	"github.com/joho/godotenv"
)

type importFile struct {
	Subjects []struct {
		Name        string   `json:"name"`
		Code        string   `json:"code"`
		Professor   string   `json:"professor"`
		Color       string   `json:"color"`
		MaxAbsences int      `json:"max_absences"`
		Grade       *float64 `json:"grade,omitempty"`
		Slots       []struct {
			Weekday   int    `json:"weekday"`
			StartHour int    `json:"start_hour"`
			EndHour   int    `json:"end_hour"`
			Room      string `json:"room"`
		} `json:"slots"`
	} `json:"subjects"`
}

func main() {
	userID := flag.Uint("user", 0, "target user id")
	path := flag.String("file", "./schedule.json", "path to the schedule JSON file")
	flag.Parse()

	if *userID == 0 {
		log.Fatal("-user is required")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	database.InitDB()
	db := database.GetDB()
	if db == nil {
		log.Fatal("Failed to connect to database")
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatal("Failed to read JSON file:", err)
	}

	var f importFile
	if err := json.Unmarshal(data, &f); err != nil {
		log.Fatal("Failed to parse JSON:", err)
	}

	var user models.User
	if err := db.First(&user, *userID).Error; err != nil {
		log.Fatalf("User %d not found", *userID)
	}

	fmt.Printf("Found %d subjects for %s\n\n", len(f.Subjects), user.Username)

	importedSubjects := 0
	importedSlots := 0

	for _, s := range f.Subjects {
		if s.Name == "" {
			continue
		}
		fmt.Printf("Processing: %s\n", s.Name)

		subject := models.Subject{
			UserID:      user.ID,
			Name:        s.Name,
			Code:        s.Code,
			Professor:   s.Professor,
			Color:       s.Color,
			MaxAbsences: s.MaxAbsences,
			Grade:       s.Grade,
		}
		if err := db.Create(&subject).Error; err != nil {
			log.Printf("Error inserting subject %q: %v\n", s.Name, err)
			continue
		}
		importedSubjects++

		for _, sl := range s.Slots {
			slot := models.ScheduleSlot{
				UserID:    user.ID,
				SubjectID: subject.ID,
				Weekday:   sl.Weekday,
				StartHour: sl.StartHour,
				EndHour:   sl.EndHour,
				Room:      sl.Room,
				Color:     s.Color,
			}
			if err := db.Create(&slot).Error; err != nil {
				log.Printf("Error inserting slot for %q: %v\n", s.Name, err)
				continue
			}
			importedSlots++
		}
	}

	fmt.Printf("\n✓ Import completed: %d subjects, %d slots\n", importedSubjects, importedSlots)
}
