package daemon

import (
	"gorm.io/gorm"

	"github.com/GoUserGroups/GoUserGroups/internal/config"
	"github.com/GoUserGroups/GoUserGroups/internal/db/models"
)

func seed(cfg *config.Config, db *gorm.DB) {
	// Seed the site-wide scope so instance-scoped groups have a home.

	var count int64

	db.Model(&models.Scope{}).
		Where("resource_type = ?", "instance").
		Count(&count)

	if count == 0 {
		db.Create(
			&models.Scope{
				Name:         "site",
				Description:  "Site-wide scope",
				ResourceType: "instance",
				ResourceID:   cfg.Webserver.Domain,
			},
		)
	}
}
