// Package features derives and encodes the model features from raw
// customer records.
//
// The transformer is a single pure function shared between the training
// and inference paths, so the train and test tables can never drift apart
// in column set or encoding. Encode produces the full one-hot frame used
// for exploration and feature selection; ModelMatrix produces the fixed
// reduced set used by all three models.
package features
