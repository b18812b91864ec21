package models

import (
	"log"

	"github.com/mmdatafocus/consolidation_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Organization{}, &User{},
		&Company{}, &MasterAccount{}, &CompanyAccount{}, &AccountMapping{},
		&Transaction{},
		&ConsolidationRun{}, &IntercompanyElimination{},
		&RunEventRecord{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
