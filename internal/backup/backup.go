// Package backup snapshots and restores the SQLite database.
package backup

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/mealplan/internal/constants"
	"github.com/julianstephens/mealplan/internal/logger"
)

const timestampLayout = "20060102-150405"

// BackupInfo describes one backup file.
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64

	seq int // same-second counter
}

// Manager creates, lists, rotates and restores backups kept in a "backups"
// directory next to the database file.
type Manager struct {
	dbPath     string
	backupDir  string
	maxBackups int
	now        func() time.Time
}

func NewManager(dbPath string) *Manager {
	return &Manager{
		dbPath:     dbPath,
		backupDir:  filepath.Join(filepath.Dir(dbPath), constants.BackupDirName),
		maxBackups: constants.MaxBackups,
		now:        time.Now,
	}
}

func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// CreateBackup snapshots the database and prunes backups beyond the
// retention limit.
func (m *Manager) CreateBackup() (string, error) {
	path, err := m.createBackup()
	if err != nil {
		return "", err
	}
	if err := m.rotateBackups(); err != nil {
		logger.Warn("Failed to rotate old backups", "error", err)
	}
	return path, nil
}

func (m *Manager) createBackup() (string, error) {
	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		return "", fmt.Errorf("database does not exist: %s", m.dbPath)
	}
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	backupPath, err := m.nextBackupPath()
	if err != nil {
		return "", err
	}

	if err := m.vacuumInto(backupPath); err != nil {
		return "", fmt.Errorf("failed to backup database: %w", err)
	}

	logger.Info("Created backup", "path", backupPath)
	return backupPath, nil
}

// nextBackupPath names the backup after the current time, adding a counter
// when several backups land in the same second.
func (m *Manager) nextBackupPath() (string, error) {
	stamp := m.now().Format(timestampLayout)
	for counter := 0; counter <= 100; counter++ {
		name := constants.BackupFilePrefix + stamp
		if counter > 0 {
			name += "-" + strconv.Itoa(counter)
		}
		path := filepath.Join(m.backupDir, name+constants.BackupFileSuffix)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique backup filename")
}

// vacuumInto writes a consistent copy of the database to destPath.
func (m *Manager) vacuumInto(destPath string) error {
	db, err := sql.Open("sqlite", m.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}

	if _, err := db.Exec("VACUUM INTO ?", destPath); err != nil {
		return err
	}
	return nil
}

// ListBackups returns the backups newest first.
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		timestamp, seq, ok := parseBackupName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:      filepath.Join(m.backupDir, entry.Name()),
			Timestamp: timestamp,
			Size:      info.Size(),
			seq:       seq,
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if !backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Timestamp.After(backups[j].Timestamp)
		}
		return backups[i].seq > backups[j].seq
	})

	return backups, nil
}

// parseBackupName extracts the timestamp of "mealplan-YYYYMMDD-HHMMSS[-N].db".
func parseBackupName(name string) (time.Time, int, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
		return time.Time{}, 0, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)
	seq := 0
	if len(stamp) > len(timestampLayout) {
		rest := stamp[len(timestampLayout):]
		n, err := strconv.Atoi(strings.TrimPrefix(rest, "-"))
		if err != nil || !strings.HasPrefix(rest, "-") || n < 1 {
			return time.Time{}, 0, false
		}
		seq = n
		stamp = stamp[:len(timestampLayout)]
	}
	ts, err := time.ParseInLocation(timestampLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}
	return ts, seq, true
}

func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}

	for i := m.maxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
		logger.Debug("Removed old backup", "path", backups[i].Path)
	}

	return nil
}

// RestoreBackup replaces the database with backupPath. The current database,
// if any, is backed up first; its backup path is returned. The database must
// not be open while restoring.
func (m *Manager) RestoreBackup(backupPath string) (string, error) {
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return "", fmt.Errorf("backup file does not exist: %s", backupPath)
	}
	if err := verifyBackup(backupPath); err != nil {
		return "", fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var safety string
	if _, err := os.Stat(m.dbPath); err == nil {
		// Not rotated: the backup being restored must survive.
		safety, err = m.createBackup()
		if err != nil {
			return "", fmt.Errorf("failed to backup current database before restore: %w", err)
		}
	}

	tempPath := m.dbPath + ".restore.tmp"
	if err := copyFile(backupPath, tempPath); err != nil {
		return safety, fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tempPath, m.dbPath); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil {
			logger.Warn("Failed to remove temporary file", "path", tempPath, "error", removeErr)
		}
		return safety, fmt.Errorf("failed to restore database: %w", err)
	}

	logger.Info("Restored backup", "backup", backupPath, "database", m.dbPath)
	return safety, nil
}

// ResolveBackup accepts a backup path or a bare file name in the backup
// directory.
func (m *Manager) ResolveBackup(nameOrPath string) string {
	if filepath.Base(nameOrPath) == nameOrPath {
		return filepath.Join(m.backupDir, nameOrPath)
	}
	return nameOrPath
}

// verifyBackup checks that path is a SQLite database holding the documents
// table.
func verifyBackup(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'documents'").Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("no documents table in %s", filepath.Base(path))
	}
	return nil
}

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := destFile.ReadFrom(sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}
