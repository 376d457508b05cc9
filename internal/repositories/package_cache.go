package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"classifiedsBack/internal/models"
)

// RedisKV is the subset of the redis client used by the cache.
type RedisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// PackageCache is a read-through redis cache in front of PackageRepository.
// Redis failures degrade to direct database reads.
type PackageCache struct {
	Repo     *PackageRepository
	RDB      RedisKV
	TTL      time.Duration
	ErrorLog *log.Logger
}

func NewPackageCache(repo *PackageRepository, rdb RedisKV, ttl time.Duration, errorLog *log.Logger) *PackageCache {
	return &PackageCache{Repo: repo, RDB: rdb, TTL: ttl, ErrorLog: errorLog}
}

func packageKey(id int) string {
	return fmt.Sprintf("package:%d", id)
}

func (c *PackageCache) GetByID(ctx context.Context, id int) (models.Package, error) {
	if c.RDB != nil {
		raw, err := c.RDB.Get(ctx, packageKey(id)).Bytes()
		switch {
		case err == nil:
			var pkg models.Package
			if err := json.Unmarshal(raw, &pkg); err == nil {
				return pkg, nil
			}
			c.logf("package cache: corrupt entry %s", packageKey(id))
		case !errors.Is(err, redis.Nil):
			c.logf("package cache: get %s: %v", packageKey(id), err)
		}
	}

	pkg, err := c.Repo.GetByID(ctx, id)
	if err != nil {
		return models.Package{}, err
	}
	c.store(ctx, pkg)
	return pkg, nil
}

func (c *PackageCache) List(ctx context.Context, activeOnly bool) ([]models.Package, error) {
	return c.Repo.List(ctx, activeOnly)
}

func (c *PackageCache) Create(ctx context.Context, pkg models.Package) (models.Package, error) {
	created, err := c.Repo.Create(ctx, pkg)
	if err != nil {
		return models.Package{}, err
	}
	c.store(ctx, created)
	return created, nil
}

func (c *PackageCache) Update(ctx context.Context, pkg models.Package) (models.Package, error) {
	updated, err := c.Repo.Update(ctx, pkg)
	if err != nil {
		return models.Package{}, err
	}
	c.invalidate(ctx, updated.ID)
	return updated, nil
}

func (c *PackageCache) Delete(ctx context.Context, id int) error {
	if err := c.Repo.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *PackageCache) store(ctx context.Context, pkg models.Package) {
	if c.RDB == nil {
		return
	}
	payload, err := json.Marshal(pkg)
	if err != nil {
		c.logf("package cache: encode package %d: %v", pkg.ID, err)
		return
	}
	if err := c.RDB.Set(ctx, packageKey(pkg.ID), payload, c.TTL).Err(); err != nil {
		c.logf("package cache: set %s: %v", packageKey(pkg.ID), err)
	}
}

func (c *PackageCache) invalidate(ctx context.Context, id int) {
	if c.RDB == nil {
		return
	}
	if err := c.RDB.Del(ctx, packageKey(id)).Err(); err != nil {
		c.logf("package cache: del %s: %v", packageKey(id), err)
	}
}

func (c *PackageCache) logf(format string, args ...any) {
	if c.ErrorLog != nil {
		c.ErrorLog.Printf(format, args...)
	}
}
