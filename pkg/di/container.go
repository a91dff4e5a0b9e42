package di

import (
	"gorm.io/gorm"

	"face-search/application/serviceimpl"
	"face-search/domain/repositories"
	"face-search/domain/services"
	"face-search/infrastructure/faceapi"
	"face-search/infrastructure/postgres"
	"face-search/infrastructure/storage"
	"face-search/infrastructure/worker"
	"face-search/interfaces/api/handlers"
	"face-search/pkg/config"
	"face-search/pkg/logger"
)

type Container struct {
	// Configuration
	Config *config.Config

	// Infrastructure
	DB         *gorm.DB
	Storage    *storage.LocalStorage
	FaceClient *faceapi.FaceClient
	Detector   *worker.DetectionPool
	Transactor repositories.Transactor

	// Repositories
	FaceRepository   repositories.FaceRepository
	PersonRepository repositories.PersonRepository
	ImageRepository  repositories.ImageRepository

	// Services
	Matcher            *serviceimpl.Matcher
	ImageService       services.ImageService
	PersonService      services.PersonService
	RecognitionService services.RecognitionService
}

func NewContainer() *Container {
	return &Container{}
}

func (c *Container) Initialize() error {
	if err := c.initConfig(); err != nil {
		return err
	}

	if err := c.initInfrastructure(); err != nil {
		return err
	}

	if err := c.initRepositories(); err != nil {
		return err
	}

	if err := c.initServices(); err != nil {
		return err
	}

	return nil
}

func (c *Container) initConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	c.Config = cfg
	logger.Startup("config_loaded", "Configuration loaded", nil)
	return nil
}

func (c *Container) initInfrastructure() error {
	dbConfig := postgres.DatabaseConfig{
		Host:     c.Config.Database.Host,
		Port:     c.Config.Database.Port,
		User:     c.Config.Database.User,
		Password: c.Config.Database.Password,
		DBName:   c.Config.Database.DBName,
		SSLMode:  c.Config.Database.SSLMode,
	}

	db, err := postgres.NewDatabase(dbConfig)
	if err != nil {
		return err
	}
	c.DB = db
	logger.Startup("db_connected", "Database connected", nil)

	if err := postgres.Migrate(db); err != nil {
		return err
	}
	logger.Startup("db_migrated", "Database migrated", nil)

	store, err := storage.NewLocalStorage(c.Config.Storage.Dir)
	if err != nil {
		return err
	}
	c.Storage = store
	logger.Startup("storage_initialized", "Local storage initialized", map[string]interface{}{
		"dir": c.Config.Storage.Dir,
	})

	c.FaceClient = faceapi.NewFaceClient(c.Config.FaceAPI.BaseURL)

	c.Detector = worker.NewDetectionPool(c.FaceClient, c.Config.FaceAPI.Workers)
	c.Detector.Start()

	c.Transactor = postgres.NewTransactor(db)

	return nil
}

func (c *Container) initRepositories() error {
	c.FaceRepository = postgres.NewFaceRepository(c.DB)
	c.PersonRepository = postgres.NewPersonRepository(c.DB)
	c.ImageRepository = postgres.NewImageRepository(c.DB)
	logger.Startup("repositories_initialized", "Repositories initialized", nil)
	return nil
}

func (c *Container) initServices() error {
	dim := c.Config.Recognition.EmbeddingDim

	c.Matcher = serviceimpl.NewMatcher(c.FaceRepository, c.Config.Recognition.Threshold)

	c.ImageService = serviceimpl.NewImageService(
		c.ImageRepository,
		c.FaceRepository,
		c.Transactor,
		c.Detector,
		c.Storage,
		c.Matcher,
		dim,
	)

	c.PersonService = serviceimpl.NewPersonService(
		c.PersonRepository,
		c.FaceRepository,
		c.ImageRepository,
		c.Transactor,
		c.Detector,
		c.Storage,
		c.Matcher,
		dim,
	)

	c.RecognitionService = serviceimpl.NewRecognitionService(c.Detector, c.Matcher, dim)

	logger.Startup("services_initialized", "Services initialized", map[string]interface{}{
		"threshold":     c.Config.Recognition.Threshold,
		"embedding_dim": dim,
	})
	return nil
}

func (c *Container) Cleanup() error {
	logger.Startup("cleanup_started", "Starting cleanup...", nil)

	if c.Detector != nil && c.Detector.IsRunning() {
		c.Detector.Stop()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.StartupWarn("db_close_failed", "Failed to close database connection", map[string]interface{}{"error": err.Error()})
			} else {
				logger.Startup("db_closed", "Database connection closed", nil)
			}
		}
	}

	logger.Startup("cleanup_completed", "Cleanup completed", nil)
	return nil
}

func (c *Container) GetConfig() *config.Config {
	return c.Config
}

func (c *Container) GetHandlerServices() *handlers.Services {
	return &handlers.Services{
		ImageService:       c.ImageService,
		PersonService:      c.PersonService,
		RecognitionService: c.RecognitionService,
	}
}

func (c *Container) GetHandlerInfrastructure() *handlers.Infrastructure {
	return &handlers.Infrastructure{
		DB:         c.DB,
		FaceClient: c.FaceClient,
		Detector:   c.Detector,
	}
}
