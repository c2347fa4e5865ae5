// Command migrate aplica o revierte el esquema PostgreSQL.
//
//	migrate up | down | version | force <n>
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/stockmaster/internal/infrastructure/migration"
	"github.com/jhoicas/stockmaster/pkg/config"
	"github.com/jhoicas/stockmaster/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	m, err := migration.New(cfg.DB.ConnectionString(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar migraciones")
	}
	defer m.Close()

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "version":
		var (
			v     uint
			dirty bool
		)
		v, dirty, err = m.Version()
		if err == nil {
			fmt.Printf("version=%d dirty=%t\n", v, dirty)
		}
	case "force":
		if len(os.Args) < 3 {
			log.Fatal().Msg("uso: migrate force <version>")
		}
		var n int
		n, err = strconv.Atoi(os.Args[2])
		if err == nil {
			err = m.Force(n)
		}
	default:
		log.Fatal().Str("cmd", cmd).Msg("comando desconocido (up | down | version | force)")
	}
	if err != nil {
		log.Fatal().Err(err).Str("cmd", cmd).Msg("migración fallida")
	}
}
