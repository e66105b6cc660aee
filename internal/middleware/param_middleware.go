package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ExtractUintParam создает middleware, разбирающее числовой параметр URL
// (например, id вопроса в админских маршрутах) до вызова обработчика.
// paramName — имя параметра в маршруте, contextKey — ключ в контексте Gin,
// под которым обработчик заберет значение через c.MustGet.
func ExtractUintParam(paramName, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param(paramName)
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s: must be a positive integer", paramName)})
			c.Abort()
			return
		}
		// Обработчики работают с uint, как и первичные ключи сущностей
		c.Set(contextKey, uint(id))
		c.Next()
	}
}
