package config

// Example usage of the configuration system:
//
// 1. Load configuration with all sources:
//
//     config, err := config.Load("", nil)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// 2. Load with custom config file:
//
//     config, err := config.Load("/path/to/config.yaml", nil)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// 3. Load with command line flags:
//
//     flags := map[string]interface{}{
//         "output": "./harvested",
//         "delay": 2 * time.Second,
//         "retries": 5,
//         "log-level": "debug",
//     }
//     config, err := config.Load("", flags)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// 4. Programmatic configuration:
//
//     config := config.DefaultConfig()
//     config.Browser.Headless = true
//     config.Discovery.MaxScrolls = 20
//
//     if err := config.Validate(); err != nil {
//         log.Fatal(err)
//     }
//
// 5. Save configuration to file:
//
//     if err := config.Save(".igharvest.yaml"); err != nil {
//         log.Fatal(err)
//     }
//
// 6. Environment variables:
//
//     export IGHARVEST_OUTPUT_DIR="./instagram_images"
//     export IGHARVEST_URLS_FILE="instagram_urls.txt"
//     export IGHARVEST_DELAY="500ms"
//     export IGHARVEST_MAX_RETRIES="3"
//     export IGHARVEST_HEADLESS="true"
//     export IGHARVEST_MAX_SCROLLS="50"
//     export IGHARVEST_LOG_LEVEL="debug"
