package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"modhub/backend/internal/models"
)

const counterKey = "current_id"

// storeMeta holds scalar store state, currently only the id counter.
type storeMeta struct {
	Name  string `gorm:"primaryKey"`
	Value int64  `gorm:"not null"`
}

func (storeMeta) TableName() string { return "store_meta" }

// GormPersister mirrors the snapshot into one SQL table per entity kind.
type GormPersister struct {
	db *gorm.DB
}

// OpenDatabase connects to a sqlite or postgres database.
func OpenDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	return db, nil
}

// NewGormPersister creates the tables it needs.
func NewGormPersister(ctx context.Context, db *gorm.DB) (*GormPersister, error) {
	err := db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Mod{},
		&models.Comment{},
		&models.Announcement{},
		&models.ChatMessage{},
		&models.SupportTicket{},
		&storeMeta{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &GormPersister{db: db}, nil
}

func (p *GormPersister) Load(ctx context.Context) (*Snapshot, error) {
	db := p.db.WithContext(ctx)

	var meta storeMeta
	if err := db.First(&meta, "name = ?", counterKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load counter: %w", err)
	}

	snap := &Snapshot{CurrentID: meta.Value}
	var err error
	if snap.Users, err = loadTable[models.User](db, func(u models.User) int64 { return u.ID }); err != nil {
		return nil, err
	}
	if snap.Mods, err = loadTable[models.Mod](db, func(m models.Mod) int64 { return m.ID }); err != nil {
		return nil, err
	}
	if snap.Comments, err = loadTable[models.Comment](db, func(c models.Comment) int64 { return c.ID }); err != nil {
		return nil, err
	}
	if snap.Announcements, err = loadTable[models.Announcement](db, func(a models.Announcement) int64 { return a.ID }); err != nil {
		return nil, err
	}
	if snap.ChatMessages, err = loadTable[models.ChatMessage](db, func(m models.ChatMessage) int64 { return m.ID }); err != nil {
		return nil, err
	}
	if snap.SupportTickets, err = loadTable[models.SupportTicket](db, func(t models.SupportTicket) int64 { return t.ID }); err != nil {
		return nil, err
	}
	return snap, nil
}

// Save replaces the content of every table inside one transaction.
func (p *GormPersister) Save(ctx context.Context, snap *Snapshot) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := replaceTable(tx, snap.Users); err != nil {
			return err
		}
		if err := replaceTable(tx, snap.Mods); err != nil {
			return err
		}
		if err := replaceTable(tx, snap.Comments); err != nil {
			return err
		}
		if err := replaceTable(tx, snap.Announcements); err != nil {
			return err
		}
		if err := replaceTable(tx, snap.ChatMessages); err != nil {
			return err
		}
		if err := replaceTable(tx, snap.SupportTickets); err != nil {
			return err
		}
		return tx.Save(&storeMeta{Name: counterKey, Value: snap.CurrentID}).Error
	})
}

func loadTable[T any](db *gorm.DB, idOf func(T) int64) ([]Entry[T], error) {
	var rows []T
	if err := db.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load %T: %w", *new(T), err)
	}
	entries := make([]Entry[T], len(rows))
	for i, row := range rows {
		entries[i] = Entry[T]{ID: idOf(row), Value: row}
	}
	return entries, nil
}

func replaceTable[T any](tx *gorm.DB, entries []Entry[T]) error {
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(new(T)).Error; err != nil {
		return fmt.Errorf("clear %T: %w", *new(T), err)
	}
	if len(entries) == 0 {
		return nil
	}
	rows := make([]T, len(entries))
	for i, e := range entries {
		rows[i] = e.Value
	}
	if err := tx.CreateInBatches(rows, 100).Error; err != nil {
		return fmt.Errorf("insert %T: %w", *new(T), err)
	}
	return nil
}
