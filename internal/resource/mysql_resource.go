package resource

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"giftvideo-service/ddd/infrastructure/database/po"
	"giftvideo-service/pkg/assert"
	"giftvideo-service/pkg/config"
	"giftvideo-service/pkg/logger"
	"giftvideo-service/pkg/manager"
)

var (
	mysqlResourceOnce      sync.Once
	singletonMysqlResource *MysqlResource
)

// MysqlResource MySQL资源管理器
type MysqlResource struct {
	mainDB *gorm.DB
}

// DefaultMysqlResource 获取MySQL资源单例
func DefaultMysqlResource() *MysqlResource {
	assert.NotCircular()
	mysqlResourceOnce.Do(func() {
		singletonMysqlResource = &MysqlResource{}
	})
	assert.NotNil(singletonMysqlResource)
	return singletonMysqlResource
}

// MustOpen 建立数据库连接并迁移表结构
func (r *MysqlResource) MustOpen() {
	if r.mainDB != nil {
		return
	}

	cfg := config.GetGlobalConfig()
	if cfg == nil {
		panic("global config not initialized before MysqlResource")
	}

	dbCfg := cfg.Database
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbCfg.Username, dbCfg.Password, dbCfg.Host, dbCfg.Port, dbCfg.Database)

	gormLogLevel := gormlogger.Warn
	if cfg.Log.Level == "debug" {
		gormLogLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect mysql: %v", err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(fmt.Sprintf("failed to get sql.DB: %v", err))
	}
	if dbCfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbCfg.MaxOpenConns)
	}
	if dbCfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbCfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&po.GiftVideoJob{}); err != nil {
		panic(fmt.Sprintf("failed to migrate schema: %v", err))
	}

	r.mainDB = db
	logger.Info("MySQL resource initialized", map[string]interface{}{
		"host":     dbCfg.Host,
		"database": dbCfg.Database,
	})
}

// Close 关闭数据库连接
func (r *MysqlResource) Close() {
	if r.mainDB == nil {
		return
	}
	if sqlDB, err := r.mainDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// MainDB 获取主数据库连接
func (r *MysqlResource) MainDB() *gorm.DB {
	return r.mainDB
}

// MySqlResourcePlugin MySQL资源插件
type MySqlResourcePlugin struct{}

func (p *MySqlResourcePlugin) Name() string {
	return "mysqlResource"
}

func (p *MySqlResourcePlugin) MustCreateResource() manager.Resource {
	return DefaultMysqlResource()
}
