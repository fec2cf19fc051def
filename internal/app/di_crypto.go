package app

import (
	"fmt"

	cryptoService "github.com/allisson/connvault/internal/crypto/service"
	cryptoUsecase "github.com/allisson/connvault/internal/crypto/usecase"
)

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// KeyDeriver returns the password key derivation service.
func (c *Container) KeyDeriver() cryptoService.KeyDeriver {
	c.keyDeriverInit.Do(func() {
		c.keyDeriver = cryptoService.NewKeyDeriver()
	})
	return c.keyDeriver
}

// KeyManager returns the key manager service.
func (c *Container) KeyManager() cryptoService.KeyManager {
	c.keyManagerInit.Do(func() {
		c.keyManager = cryptoService.NewKeyManager(c.AEADManager())
	})
	return c.keyManager
}

// KeyStoreUseCase returns the key store use case, throttled and optionally instrumented.
func (c *Container) KeyStoreUseCase() (cryptoUsecase.KeyStoreUseCase, error) {
	var err error
	c.keyStoreUseCaseInit.Do(func() {
		c.keyStoreUseCase, err = c.initKeyStoreUseCase()
		if err != nil {
			c.setInitError("keyStoreUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("keyStoreUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.keyStoreUseCase, nil
}

// initKeyStoreUseCase creates the key store use case with all its dependencies.
func (c *Container) initKeyStoreUseCase() (cryptoUsecase.KeyStoreUseCase, error) {
	kdfParams, err := c.config.KDFParams()
	if err != nil {
		return nil, err
	}

	algorithm, err := c.config.Algorithm()
	if err != nil {
		return nil, err
	}

	repo, err := c.FileRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get file repository for key store use case: %w", err)
	}

	baseUseCase, err := cryptoUsecase.NewKeyStoreUseCase(
		repo,
		c.KeyDeriver(),
		c.KeyManager(),
		kdfParams,
		algorithm,
		c.Logger(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create key store use case: %w", err)
	}

	useCase := cryptoUsecase.NewKeyStoreUseCaseWithLimiter(
		baseUseCase,
		c.config.UnlockBurst,
		c.config.UnlockInterval,
	)

	// Wrap with metrics if enabled
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for key store use case: %w", err)
	}
	if businessMetrics != nil {
		useCase = cryptoUsecase.NewKeyStoreUseCaseWithMetrics(useCase, businessMetrics)
	}

	return useCase, nil
}
