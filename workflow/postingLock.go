package workflow

import (
	"fmt"

	"github.com/mmdatafocus/consolidation_backend/utils"
	"gorm.io/gorm"
)

// AcquireConsolidationLock serializes runs per organization and fiscal
// period across instances using MySQL advisory locks. The zero timeout
// makes a second caller fail immediately instead of queueing behind a run
// that may take minutes.
// NOTE: GET_LOCK is connection-scoped, so this must be called on the same
// connection that ReleaseConsolidationLock will use.
func AcquireConsolidationLock(conn *gorm.DB, organizationId string, fiscalYear int, fiscalPeriod int) error {
	lockName := consolidationLockName(organizationId, fiscalYear, fiscalPeriod)
	var ok int
	if err := conn.Raw("SELECT GET_LOCK(?, 0)", lockName).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return utils.ErrorRunInProgress
	}
	return nil
}

func ReleaseConsolidationLock(conn *gorm.DB, organizationId string, fiscalYear int, fiscalPeriod int) {
	lockName := consolidationLockName(organizationId, fiscalYear, fiscalPeriod)
	var _ok int
	_ = conn.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&_ok).Error
}

func consolidationLockName(organizationId string, fiscalYear int, fiscalPeriod int) string {
	return fmt.Sprintf("consolidation:%s:%d:%d", organizationId, fiscalYear, fiscalPeriod)
}
