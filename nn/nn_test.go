// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/densenet/matrix"
	"github.com/born-ml/densenet/nn"
)

func TestDense_WrapRoundTrip(t *testing.T) {
	layer := nn.NewDense(nn.DenseConfig{
		Units:             4,
		Activation:        nn.NewReLU(),
		UseBias:           true,
		KernelInitializer: nn.NewConstant(0.5),
	})

	got, err := nn.GetLayer(nn.Wrap(layer))
	require.NoError(t, err)
	assert.Equal(t, "Dense", got.ClassName())
	assert.Equal(t, 4, got.Units())
	assert.False(t, got.Built())

	require.NoError(t, got.Build(3))
	require.Len(t, got.Weights(), 2)
	assert.True(t, got.Weights()[0].Value().Equal(matrix.Fill(matrix.Shape{4, 3}, 0.5), 0))
}

func TestGetters_CaseInsensitive(t *testing.T) {
	act, err := nn.GetActivation(nn.Wrapped{ClassName: "softmax"})
	require.NoError(t, err)
	assert.Equal(t, "SoftMax", act.ClassName())

	loss, err := nn.GetLoss(nn.Wrapped{ClassName: "CATEGORICALCROSSENTROPY"})
	require.NoError(t, err)
	assert.Equal(t, "CategoricalCrossentropy", loss.ClassName())

	ini, err := nn.GetInitializer(nn.Wrapped{ClassName: "RandomUniform", Config: nn.Config{"min": -1.0, "max": 1.0}})
	require.NoError(t, err)
	assert.Equal(t, nn.Config{"min": -1.0, "max": 1.0}, ini.Config())
}

func TestGetters_UnknownClass(t *testing.T) {
	_, err := nn.GetLayer(nn.Wrapped{ClassName: "Conv2D"})
	assert.ErrorIs(t, err, nn.ErrConfiguration)

	_, err = nn.GetActivation(nn.Wrapped{ClassName: "tanh"})
	assert.ErrorIs(t, err, nn.ErrConfiguration)
}

func TestDense_ForwardShapeError(t *testing.T) {
	layer := nn.NewDense(nn.DefaultDenseConfig(2))
	require.NoError(t, layer.Build(3))

	_, err := layer.Forward(matrix.New(4, 1))
	assert.ErrorIs(t, err, matrix.ErrShape)

	var se *matrix.ShapeError
	assert.ErrorAs(t, err, &se)
}
