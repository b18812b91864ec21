package models

import (
	"github.com/mmdatafocus/consolidation_backend/utils"
)

type RedisCleaner interface {
	RemoveInstanceRedis() error // remove one
	RemoveAllRedis() error      // remove list if exists
}

// remove both item & list
func RemoveRedisBoth[T RedisCleaner](obj T) error {
	if err := obj.RemoveInstanceRedis(); err != nil {
		return err
	}
	if err := obj.RemoveAllRedis(); err != nil {
		return err
	}
	return nil
}

func (obj Company) RemoveInstanceRedis() error {
	if err := utils.RemoveRedisItem[Company](obj.ID); err != nil {
		return err
	}
	return nil
}

func (obj Company) RemoveAllRedis() error {
	if err := utils.RemoveRedisList[AllCompany](obj.OrganizationId); err != nil {
		return err
	}
	return nil
}

func (obj MasterAccount) RemoveInstanceRedis() error {
	if err := utils.RemoveRedisItem[MasterAccount](obj.ID); err != nil {
		return err
	}
	return nil
}

func (obj MasterAccount) RemoveAllRedis() error {
	if err := utils.RemoveRedisList[AllMasterAccount](obj.OrganizationId); err != nil {
		return err
	}
	return nil
}

func (obj CompanyAccount) RemoveInstanceRedis() error {
	if err := utils.RemoveRedisItem[CompanyAccount](obj.ID); err != nil {
		return err
	}
	return nil
}

func (obj CompanyAccount) RemoveAllRedis() error {
	return nil
}

func (obj AccountMapping) RemoveInstanceRedis() error {
	if err := utils.RemoveRedisItem[AccountMapping](obj.ID); err != nil {
		return err
	}
	return nil
}

func (obj AccountMapping) RemoveAllRedis() error {
	return nil
}
