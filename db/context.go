package db

import (
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

const contextDBKey = "prospecta_db"

// SetDBtoContext injeta a conexão no contexto de cada request. Os
// handlers leem via DBInstance em vez de dependerem de um global.
func SetDBtoContext(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextDBKey, database)
		c.Next()
	}
}

// DBInstance devolve a conexão do contexto, ou nil se o middleware não
// foi registado.
func DBInstance(c *gin.Context) *gorm.DB {
	v, ok := c.Get(contextDBKey)
	if !ok {
		return nil
	}
	db, _ := v.(*gorm.DB)
	return db
}
