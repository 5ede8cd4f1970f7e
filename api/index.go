package handler

import (
	"log/slog"
	"net/http"
	"os"
	"sync"

	config "sales-forecast-api/configs"
	"sales-forecast-api/pkg/handlers"

	"github.com/gin-gonic/gin"
)

var (
	app  *gin.Engine
	once sync.Once
)

// setupApp はGinアプリケーションを初期化します。
// サーバーレス環境では、リクエストごとに初期化が走らないようsync.Onceで一度だけ実行します。
// Uploaded datasets live only as long as the function instance.
func setupApp() *gin.Engine {
	once.Do(func() {
		// 環境変数はVercelの設定から読み込まれるため、godotenvは使用しません。
		cfg := config.LoadConfig()
		logger := config.NewLogger(cfg, os.Stdout)
		slog.SetDefault(logger)

		gin.SetMode(gin.ReleaseMode)
		app = handlers.NewRouter(cfg, logger)
		logger.Info("Gin application initialized", slog.String("environment", cfg.Environment))
	})
	return app
}

// Handler はVercelからのすべてのリクエストを処理するエントリーポイントです。
func Handler(w http.ResponseWriter, r *http.Request) {
	setupApp().ServeHTTP(w, r)
}
