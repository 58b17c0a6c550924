// Package bridge adapts ThinQ appliances to the Gray Logic climate entity
// model and runs the bridge process around the adapters.
//
// The package has two halves:
//
//   - Translation: ModeTranslator derives, per device, the platform HVAC and
//     preset mode tables from the vendor operating-mode vocabulary, and the
//     climate adapters (ACClimate, RefrigeratorClimate) expose the standard
//     climate read/write surface over the thinq device models.
//
//   - Runtime: Bridge discovers appliances through the session, registers one
//     climate entity per AC and one per refrigerator compartment, routes MQTT
//     command messages to entity methods with acknowledgements, polls device
//     snapshots, and publishes retained state updates with change
//     suppression. A HealthReporter announces bridge status.
//
// Adapters are not safe for concurrent use on their own; the Bridge
// serialises access per entity, matching the platform's one-entity-one-caller
// model. Command failures from the device layer are propagated unchanged and
// never retried here.
package bridge
